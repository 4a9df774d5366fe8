//go:build windows

package pipe

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

// Address maps a pipe name onto the named pipe path both ends use.
func Address(name string) string {
	return `\\.\pipe\` + name
}

// listenEndpoint creates the named pipe server. winio has no context-aware
// listen; Accept's cancellation closes the listener instead.
func listenEndpoint(_ context.Context, name string) (net.Listener, error) {
	return winio.ListenPipe(Address(name), nil)
}

func dialEndpoint(ctx context.Context, name string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, Address(name))
}
