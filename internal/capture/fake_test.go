package capture

import (
	"context"
	"sync"
)

// FakeCamera is an in-memory ImageCapture.
type FakeCamera struct {
	Image    []byte
	OpenErr  error
	StillErr error

	mu     sync.Mutex
	opened int
	closed int
}

func (f *FakeCamera) Open(context.Context, Facing) (Stream, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return &fakeStream{cam: f}, nil
}

// Leaked is the number of streams opened and never closed.
func (f *FakeCamera) Leaked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened - f.closed
}

type fakeStream struct {
	cam *FakeCamera
}

func (s *fakeStream) Still(context.Context) ([]byte, error) {
	if s.cam.StillErr != nil {
		return nil, s.cam.StillErr
	}
	return append([]byte(nil), s.cam.Image...), nil
}

func (s *fakeStream) Close() error {
	s.cam.mu.Lock()
	s.cam.closed++
	s.cam.mu.Unlock()
	return nil
}

// FakeDictation returns a fixed transcript.
type FakeDictation struct {
	Text string
	Err  error
}

func (f FakeDictation) Dictate(context.Context) (string, error) {
	return f.Text, f.Err
}
