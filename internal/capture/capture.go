// Package capture defines the device collaborators used by disease
// detection: a camera that takes a still photo and a microphone that
// dictates symptoms.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrPermissionDenied = errors.New("device permission denied")
	ErrUnavailable      = errors.New("device unavailable")
)

const ImageContentType = "image/jpeg"

type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Frame is one encoded still image.
type Frame struct {
	Name        string
	ContentType string
	Data        []byte
	CapturedAt  time.Time
}

// Stream is an open camera. It must be closed on every path.
type Stream interface {
	Still(ctx context.Context) ([]byte, error)
	Close() error
}

type ImageCapture interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

type SpeechTranscription interface {
	Dictate(ctx context.Context) (string, error)
}

// FrameName is capture-<unix millis>.jpg.
func FrameName(at time.Time) string {
	return fmt.Sprintf("capture-%d.jpg", at.UnixMilli())
}

// CaptureStill opens the environment-facing camera, takes one JPEG frame and
// closes the stream.
func CaptureStill(ctx context.Context, cam ImageCapture, now func() time.Time) (frame Frame, err error) {
	if now == nil {
		now = time.Now
	}
	stream, err := cam.Open(ctx, FacingEnvironment)
	if err != nil {
		return Frame{}, fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close camera: %w", cerr)
		}
	}()

	data, err := stream.Still(ctx)
	if err != nil {
		return Frame{}, fmt.Errorf("capture frame: %w", err)
	}
	at := now()
	return Frame{
		Name:        FrameName(at),
		ContentType: ImageContentType,
		Data:        data,
		CapturedAt:  at,
	}, nil
}

// Affordances reports which inputs the page can offer given the errors seen
// while probing the devices.
type Affordances struct {
	Camera     bool   `json:"camera"`
	Microphone bool   `json:"microphone"`
	Notice     string `json:"notice,omitempty"`
}

// Device statuses reported by the page after probing camera and microphone.
const (
	DeviceOK          = "ok"
	DeviceDenied      = "denied"
	DeviceUnavailable = "unavailable"
)

// StatusError maps a reported device status onto the probe error it stands for.
func StatusError(status string) error {
	switch status {
	case "", DeviceOK:
		return nil
	case DeviceDenied:
		return ErrPermissionDenied
	default:
		return ErrUnavailable
	}
}

func AffordancesFor(cameraErr, micErr error) Affordances {
	a := Affordances{Camera: cameraErr == nil, Microphone: micErr == nil}
	switch {
	case errors.Is(cameraErr, ErrPermissionDenied) || errors.Is(micErr, ErrPermissionDenied):
		a.Notice = "Permission denied. You can still upload a photo or type the symptoms."
	case cameraErr != nil || micErr != nil:
		a.Notice = "Device not available. You can still upload a photo or type the symptoms."
	}
	return a
}
