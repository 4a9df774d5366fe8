// Package pipe is the byte channel between the detector and the overlay.
//
// The endpoint is named after the pipe name the two processes agree on out
// of band: a named pipe on Windows, a unix-domain stream socket elsewhere. The overlay side accepts exactly one
// connection per process lifetime and never reconnects; once the
// connection closes, a fresh process pairing is needed.
package pipe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"syscall"
)

// ErrAlreadyAccepted is returned by a second Accept on the same Listener.
var ErrAlreadyAccepted = errors.New("pipe: connection already accepted")

// ChannelError is any I/O failure other than a clean disconnect. It is
// fatal to the channel.
type ChannelError struct {
	Op    string
	Cause error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("pipe %s: %v", e.Op, e.Cause)
}

func (e *ChannelError) Unwrap() error { return e.Cause }

// State is the lifecycle position of a channel endpoint.
type State int

const (
	StateListening State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	default:
		return "closed"
	}
}

// Listener is a bound endpoint waiting for its single counterpart.
type Listener struct {
	ln   net.Listener
	path string

	mu       sync.Mutex
	accepted bool
}

// Bind creates the endpoint for name.
func Bind(ctx context.Context, name string) (*Listener, error) {
	ln, err := listenEndpoint(ctx, name)
	if err != nil {
		return nil, &ChannelError{Op: "bind", Cause: err}
	}
	return &Listener{ln: ln, path: Address(name)}, nil
}

// Path is the endpoint address the listener is bound to.
func (l *Listener) Path() string { return l.path }

// Accept blocks until the counterpart connects or ctx is cancelled. The
// listener is closed afterwards either way.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	l.mu.Lock()
	if l.accepted {
		l.mu.Unlock()
		return nil, ErrAlreadyAccepted
	}
	l.accepted = true
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { l.ln.Close() })
	defer stop()
	defer l.ln.Close()

	c, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ChannelError{Op: "accept", Cause: err}
	}
	return NewConn(c), nil
}

// Close releases the endpoint without accepting.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Listen binds name and waits for the single counterpart connection.
func Listen(ctx context.Context, name string) (*Conn, error) {
	l, err := Bind(ctx, name)
	if err != nil {
		return nil, err
	}
	return l.Accept(ctx)
}

// Conn is the connected, read side of the channel.
type Conn struct {
	rwc io.ReadWriteCloser
	r   *bufio.Reader

	mu     sync.Mutex
	state  State
	reason error
}

// NewConn wraps an established stream.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{rwc: rwc, r: bufio.NewReader(rwc), state: StateConnected}
}

// State reports the lifecycle state and, once closed, why.
func (c *Conn) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.reason
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// when the counterpart disconnected or the connection was closed locally,
// and a *ChannelError for anything else.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if line != "" && errors.Is(err, io.EOF) {
		// final unterminated line; the next read reports EOF
		return strings.TrimRight(line, "\r"), nil
	}
	if c.closedLocally() || isDisconnect(err) {
		c.markClosed(io.EOF)
		return "", io.EOF
	}
	cerr := &ChannelError{Op: "read", Cause: err}
	c.markClosed(cerr)
	return "", cerr
}

// Close shuts the connection down. Closing twice is harmless.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.reason = net.ErrClosed
	c.mu.Unlock()
	return c.rwc.Close()
}

func (c *Conn) closedLocally() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateClosed && errors.Is(c.reason, net.ErrClosed)
}

func (c *Conn) markClosed(reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	c.reason = reason
	c.rwc.Close()
}

// isDisconnect reports errors that mean the peer went away.
func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
