package detection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"khetmitra-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// ==========================
// Test doubles
// ==========================

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

type tickers struct {
	mu  sync.Mutex
	all []*manualTicker
}

func (ts *tickers) factory(time.Duration) Ticker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	mt := &manualTicker{ch: make(chan time.Time)}
	ts.all = append(ts.all, mt)
	return mt
}

func (ts *tickers) count() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.all)
}

func (ts *tickers) last() *manualTicker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.all[len(ts.all)-1]
}

// tick delivers n ticks; each send returns once the job loop has taken it.
func tick(t *testing.T, mt *manualTicker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case mt.ch <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d not consumed", i+1)
		}
	}
}

func tickUntilDone(t *testing.T, mt *manualTicker, h *Handle) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case mt.ch <- time.Now():
		case <-h.Done():
			return
		case <-deadline:
			t.Fatal("job did not finish")
		}
	}
}

type recordingSink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recordingSink) Publish(_ context.Context, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
	return nil
}

func (r *recordingSink) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

// gatedClassifier returns once release is closed, or fails if err is set.
type gatedClassifier struct {
	release chan struct{}
	result  Result
	err     error
}

func (g *gatedClassifier) Classify(ctx context.Context, _ Submission) (Result, error) {
	select {
	case <-g.release:
		return g.result, g.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func newTestTracker(t *testing.T, c Classifier, sink ProgressSink) (*Tracker, *tickers) {
	ts := &tickers{}
	tr := NewTracker(TrackerConfig{TickInterval: time.Millisecond, NewTicker: ts.factory}, c, sink, logger.NewTestLogger(t))
	return tr, ts
}

// ==========================
// Tracker
// ==========================

func TestTracker_RunsToDoneWithDefaultResult(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sink := &recordingSink{}
	tr, ts := newTestTracker(t, StaticClassifier{}, sink)

	h := tr.Start(context.Background(), "sess-1", Submission{ImageName: "leaf.jpg"})
	tickUntilDone(t, ts.last(), h)

	snap, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, StageDone, snap.Stage)
	require.NotNil(t, snap.Result)
	assert.Equal(t, DefaultResult(), *snap.Result)

	prev := -1
	for _, s := range sink.all() {
		assert.GreaterOrEqual(t, s.Progress, prev, "progress must not decrease")
		prev = s.Progress
		stage, err := StageFor(s.Progress)
		require.NoError(t, err)
		assert.Equal(t, stage, s.Stage)
		assert.Equal(t, "sess-1", s.SessionID)
	}
}

func TestTracker_TickSourceReadyWhenStartReturns(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	tr, ts := newTestTracker(t, StaticClassifier{}, nil)

	first := tr.Start(context.Background(), "sess-1", Submission{Symptoms: "yellow spots"})
	require.Equal(t, 1, ts.count())
	mt := ts.last()

	second := tr.Start(context.Background(), "sess-2", Submission{Symptoms: "wilting"})
	require.Equal(t, 2, ts.count())

	tickUntilDone(t, mt, first)
	assert.True(t, mt.isStopped())
	assert.False(t, ts.last().isStopped())

	second.Cancel()
	assert.True(t, ts.last().isStopped())
}

func TestTracker_HoldsBeforeDoneUntilDiagnosisArrives(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := &gatedClassifier{release: make(chan struct{}), result: Result{Label: "Rust", ConfidencePercent: 70, Severity: "Low"}}
	tr, ts := newTestTracker(t, gate, nil)

	h := tr.Start(context.Background(), "sess-1", Submission{Symptoms: "orange spots"})
	mt := ts.last()

	tick(t, mt, 9)
	tick(t, mt, 1) // held at 90

	snap := h.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, 90, snap.Progress)
	assert.Equal(t, StageGeneratingResults, snap.Stage)

	close(gate.release)
	tickUntilDone(t, mt, h)

	snap, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rust", snap.Result.Label)
}

func TestTracker_StagesFollowTicks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := &gatedClassifier{release: make(chan struct{})}
	sink := &recordingSink{}
	tr, ts := newTestTracker(t, gate, sink)
	h := tr.Start(context.Background(), "sess-1", Submission{ImageName: "a.jpg"})

	// nine applied ticks, then one held tick to make sure the ninth landed
	tick(t, ts.last(), 10)
	h.Cancel()

	want := []struct {
		progress int
		stage    Stage
	}{
		{0, StageNone},
		{10, StageUploading}, {20, StageUploading}, {30, StageUploading},
		{40, StageAnalyzing}, {50, StageAnalyzing}, {60, StageAnalyzing},
		{70, StageGeneratingResults}, {80, StageGeneratingResults}, {90, StageGeneratingResults},
	}
	got := sink.all()
	require.Len(t, got, len(want)+1) // plus the idle snapshot from Cancel
	for i, w := range want {
		assert.Equal(t, w.progress, got[i].Progress)
		assert.Equal(t, w.stage, got[i].Stage)
	}
	assert.Equal(t, StateIdle, got[len(got)-1].State)
}

func TestTracker_FailedWhenClassifierErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	boom := errors.New("inference 503")
	gate := &gatedClassifier{release: make(chan struct{}), err: boom}
	close(gate.release)

	sink := &recordingSink{}
	tr, _ := newTestTracker(t, gate, sink)
	h := tr.Start(context.Background(), "sess-1", Submission{ImageName: "a.jpg"})

	snap, err := h.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "inference 503", snap.Error)

	all := sink.all()
	assert.Equal(t, StateFailed, all[len(all)-1].State)
}

func TestTracker_CancelResetsToIdle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := &gatedClassifier{release: make(chan struct{})}
	tr, ts := newTestTracker(t, gate, nil)
	h := tr.Start(context.Background(), "sess-1", Submission{ImageName: "a.jpg"})
	tick(t, ts.last(), 4)

	h.Cancel()
	h.Cancel() // idempotent

	snap, err := h.Wait(context.Background())
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 0, snap.Progress)
	assert.Equal(t, StageNone, snap.Stage)
}

func TestTracker_ParentContextCancels(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	gate := &gatedClassifier{release: make(chan struct{})}
	tr, _ := newTestTracker(t, gate, nil)
	h := tr.Start(ctx, "sess-1", Submission{ImageName: "a.jpg"})

	cancel()
	_, err := h.Wait(context.Background())
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestHandle_WaitHonoursCallerContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := &gatedClassifier{release: make(chan struct{})}
	tr, _ := newTestTracker(t, gate, nil)
	h := tr.Start(context.Background(), "sess-1", Submission{ImageName: "a.jpg"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := h.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	h.Cancel()
}

// ==========================
// Sessions
// ==========================

func TestSessions_NewSubmissionCancelsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := &gatedClassifier{release: make(chan struct{})}
	tr, ts := newTestTracker(t, gate, nil)
	sessions := NewSessions(tr)

	first := sessions.Submit(context.Background(), "sess-1", Submission{ImageName: "a.jpg"})
	tick(t, ts.last(), 3)

	second := sessions.Submit(context.Background(), "sess-1", Submission{ImageName: "b.jpg"})

	select {
	case <-first.Done():
	default:
		t.Fatal("previous job still running after resubmission")
	}
	_, err := first.Wait(context.Background())
	assert.ErrorIs(t, err, ErrCancelled)

	assert.False(t, sessions.IsCurrent(first))
	assert.True(t, sessions.IsCurrent(second))
	assert.Equal(t, 0, second.Snapshot().Progress)

	other := sessions.Submit(context.Background(), "sess-2", Submission{Symptoms: "wilting"})
	assert.True(t, sessions.IsCurrent(second), "other sessions are independent")

	assert.True(t, sessions.Cancel("sess-1"))
	assert.False(t, sessions.Cancel("sess-1"))

	sessions.Release(other)
	_, ok := sessions.Active("sess-2")
	assert.False(t, ok)
	other.Cancel()
	sessions.CancelAll()
}

func TestSessions_CancelAll(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := &gatedClassifier{release: make(chan struct{})}
	tr, _ := newTestTracker(t, gate, nil)
	sessions := NewSessions(tr)

	a := sessions.Submit(context.Background(), "a", Submission{ImageName: "a.jpg"})
	b := sessions.Submit(context.Background(), "b", Submission{ImageName: "b.jpg"})
	sessions.CancelAll()

	for _, h := range []*Handle{a, b} {
		select {
		case <-h.Done():
		default:
			t.Fatal("job left running")
		}
	}
}
