package detection

import (
	"context"
	"errors"
	"sync"
	"time"

	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"

	"github.com/google/uuid"
)

// State is the lifecycle state of a detection job.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// ErrCancelled is returned by Wait when the job was cancelled or superseded.
var ErrCancelled = errors.New("detection job cancelled")

// Snapshot is the observable state of a job at one point in time.
type Snapshot struct {
	JobID     string    `json:"jobId"`
	SessionID string    `json:"sessionId"`
	State     State     `json:"state"`
	Progress  int       `json:"progress"`
	Stage     Stage     `json:"stage"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Terminal reports whether the job will not change any more.
func (s Snapshot) Terminal() bool {
	return s.State == StateDone || s.State == StateFailed || s.State == StateIdle
}

// Ticker is the tick source driving progress.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// ProgressSink receives every snapshot a job publishes.
type ProgressSink interface {
	Publish(ctx context.Context, snap Snapshot) error
}

type NopSink struct{}

func (NopSink) Publish(context.Context, Snapshot) error { return nil }

type TrackerConfig struct {
	TickInterval time.Duration
	NewTicker    TickerFactory
}

// Tracker starts detection jobs. It holds no per-job state.
type Tracker struct {
	interval   time.Duration
	newTicker  TickerFactory
	classifier Classifier
	sink       ProgressSink
	logger     logger.Logger
}

func NewTracker(cfg TrackerConfig, classifier Classifier, sink ProgressSink, log logger.Logger) *Tracker {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 300 * time.Millisecond
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewRealTicker
	}
	if classifier == nil {
		classifier = StaticClassifier{}
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Tracker{
		interval:   cfg.TickInterval,
		newTicker:  cfg.NewTicker,
		classifier: classifier,
		sink:       sink,
		logger:     log,
	}
}

// Handle controls one running job.
type Handle struct {
	id      string
	session string
	cancel  context.CancelFunc
	done    chan struct{}

	mu   sync.Mutex
	snap Snapshot
	err  error
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := h.snap
	if snap.Result != nil {
		r := *snap.Result
		r.RemediationSteps = append([]string(nil), snap.Result.RemediationSteps...)
		snap.Result = &r
	}
	return snap
}

// Cancel stops the tick source and waits for the job goroutine to exit.
// Cancelling a finished job is a no-op.
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
}

// Wait blocks until the job is terminal or ctx ends. A ctx expiry does not
// cancel the job.
func (h *Handle) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		return h.Snapshot(), ctx.Err()
	}
	snap := h.Snapshot()
	switch snap.State {
	case StateDone:
		return snap, nil
	case StateFailed:
		h.mu.Lock()
		defer h.mu.Unlock()
		return snap, h.err
	default:
		return snap, ErrCancelled
	}
}

// Start launches a job for sessionID. The job runs until Done, Failed, or
// until ctx ends or the handle is cancelled. The tick source exists once
// Start returns.
func (t *Tracker) Start(ctx context.Context, sessionID string, sub Submission) *Handle {
	jobCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:      uuid.NewString(),
		session: sessionID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	h.snap = Snapshot{
		JobID:     h.id,
		SessionID: sessionID,
		State:     StateRunning,
		Progress:  0,
		Stage:     StageNone,
		UpdatedAt: time.Now().UTC(),
	}
	t.publish(jobCtx, h.snap)

	ticker := t.newTicker(t.interval)
	go t.run(jobCtx, h, sub, ticker)
	return h
}

type outcome struct {
	result Result
	err    error
}

func (t *Tracker) run(ctx context.Context, h *Handle, sub Submission, ticker Ticker) {
	log := t.logger.WithFields(map[string]interface{}{"jobId": h.id, "sessionId": h.session})

	var wg sync.WaitGroup
	defer func() {
		h.cancel()
		wg.Wait()
		close(h.done)
	}()

	defer ticker.Stop()

	results := make(chan outcome, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		r, err := t.classifier.Classify(ctx, sub)
		results <- outcome{result: r, err: err}
	}()

	var ready *Result
	progress := 0
	stage := StageNone

	for {
		select {
		case <-ctx.Done():
			t.finish(h, StateIdle, 0, nil, ErrCancelled)
			log.Debug("detection job cancelled", map[string]interface{}{"progress": progress})
			return

		case o := <-results:
			results = nil
			if ctx.Err() != nil {
				t.finish(h, StateIdle, 0, nil, ErrCancelled)
				return
			}
			if o.err != nil {
				t.finish(h, StateFailed, progress, nil, o.err)
				log.Warn("detection job failed", map[string]interface{}{"progress": progress, "error": o.err.Error()})
				return
			}
			r := o.result
			ready = &r

		case <-ticker.C():
			next := Advance(progress)
			// hold in Generating Results until the diagnosis is in
			if next == MaxProgress && ready == nil {
				continue
			}
			progress = next

			s, _ := StageFor(progress)
			if s != stage {
				stage = s
				metrics.DetectionStageTransitions.WithLabelValues(string(stage)).Inc()
			}

			if progress == MaxProgress {
				t.finish(h, StateDone, progress, ready, nil)
				log.Info("detection job done", map[string]interface{}{"label": ready.Label})
				return
			}

			h.mu.Lock()
			h.snap.Progress = progress
			h.snap.Stage = stage
			h.snap.UpdatedAt = time.Now().UTC()
			snap := h.snap
			h.mu.Unlock()
			t.publish(ctx, snap)
		}
	}
}

func (t *Tracker) finish(h *Handle, state State, progress int, result *Result, err error) {
	stage, _ := StageFor(progress)

	h.mu.Lock()
	h.snap.State = state
	h.snap.Progress = progress
	h.snap.Stage = stage
	h.snap.Result = result
	if err != nil {
		h.snap.Error = err.Error()
		h.err = err
	}
	h.snap.UpdatedAt = time.Now().UTC()
	snap := h.snap
	h.mu.Unlock()

	// terminal snapshots are published even after cancellation
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	t.publish(ctx, snap)
}

func (t *Tracker) publish(ctx context.Context, snap Snapshot) {
	if err := t.sink.Publish(ctx, snap); err != nil {
		t.logger.Warn("failed to publish detection progress", map[string]interface{}{
			"jobId": snap.JobID,
			"error": err.Error(),
		})
	}
}
