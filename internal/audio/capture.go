package audio

import (
	"context"
	"io"
	"time"
)

// CaptureSource is an exclusive handle on an audio input. Chunks yields raw
// audio as it becomes available; Close releases the device and makes Chunks
// return a closed channel.
type CaptureSource interface {
	Chunks() <-chan []byte
	Close() error
}

// OpenCapture acquires the capture device. Implementations return
// ErrMicrophoneUnavailable (possibly wrapped) when the device cannot be
// acquired.
type OpenCapture func(ctx context.Context) (CaptureSource, error)

// readerCapture paces an io.Reader into fixed-size chunks on a cadence. It
// backs the simulator and the tests; a real deployment plugs a device-backed
// CaptureSource in instead.
type readerCapture struct {
	out    chan []byte
	cancel context.CancelFunc
}

// NewReaderCapture reads chunkSize bytes from r every interval until EOF or
// Close. The returned source owns no goroutine after Close returns.
func NewReaderCapture(r io.Reader, chunkSize int, interval time.Duration) CaptureSource {
	ctx, cancel := context.WithCancel(context.Background())
	c := &readerCapture{
		out:    make(chan []byte),
		cancel: cancel,
	}

	go func() {
		defer close(c.out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				buf := make([]byte, chunkSize)
				n, err := io.ReadFull(r, buf)
				if n > 0 {
					select {
					case c.out <- buf[:n]:
					case <-ctx.Done():
						return
					}
				}
				if err != nil {
					return
				}
			}
		}
	}()

	return c
}

func (c *readerCapture) Chunks() <-chan []byte {
	return c.out
}

func (c *readerCapture) Close() error {
	c.cancel()
	return nil
}
