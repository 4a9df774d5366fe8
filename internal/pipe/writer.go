package pipe

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fadedlamp42/freezeview/internal/protocol"
)

// dialBackoff controls how Dial waits for the listener to appear.
type dialBackoff struct {
	baseDelay time.Duration
	maxDelay  time.Duration
}

var defaultDialBackoff = dialBackoff{
	baseDelay: 20 * time.Millisecond,
	maxDelay:  500 * time.Millisecond,
}

// delay is baseDelay * 2^attempt capped at maxDelay, plus jitter in
// [0, baseDelay).
func (b dialBackoff) delay(attempt int) time.Duration {
	d := b.maxDelay
	if attempt < 16 {
		d = min(b.baseDelay<<uint(attempt), b.maxDelay)
	}
	return d + time.Duration(rand.Int64N(int64(b.baseDelay)))
}

// Writer is the detector side of the channel.
type Writer struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewWriter wraps an established stream.
func NewWriter(w io.WriteCloser) *Writer {
	return &Writer{w: w}
}

// Dial connects to the overlay listening on name. The overlay may not have
// bound yet, so Dial keeps retrying until ctx is done.
func Dial(ctx context.Context, name string) (*Writer, error) {
	for attempt := 0; ; attempt++ {
		c, err := dialEndpoint(ctx, name)
		if err == nil {
			return NewWriter(c), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t := time.NewTimer(defaultDialBackoff.delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// Send writes one encoded event.
func (w *Writer) Send(ev protocol.Event) error {
	return w.SendLine(protocol.Encode(ev))
}

// SendLine writes raw text, used to replay transcripts verbatim.
func (w *Writer) SendLine(line string) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, line); err != nil {
		return &ChannelError{Op: "write", Cause: err}
	}
	return nil
}

// Close disconnects; the overlay sees end-of-stream.
func (w *Writer) Close() error {
	return w.w.Close()
}
