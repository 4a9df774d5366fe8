//go:build !windows

package pipe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxSocketPath is the longest sun_path every supported kernel accepts
// (104 bytes on darwin and the BSDs, including the terminating NUL).
const maxSocketPath = 103

// Address maps a pipe name onto the socket path both ends use. Names that
// would overflow sun_path are replaced by a stable digest of the name, so
// both ends still agree without coordinating.
func Address(name string) string {
	path := filepath.Join(os.TempDir(), name+".sock")
	if len(path) <= maxSocketPath {
		return path
	}
	digest := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
	return filepath.Join(os.TempDir(), "fv-"+digest+".sock")
}

// listenEndpoint binds the socket. A stale socket file left by a crashed
// run is removed first.
func listenEndpoint(ctx context.Context, name string) (net.Listener, error) {
	path := Address(name)
	if len(path) > maxSocketPath {
		return nil, fmt.Errorf("socket path %q exceeds %d bytes; set TMPDIR to a shorter directory", path, maxSocketPath)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var lc net.ListenConfig
	return lc.Listen(ctx, "unix", path)
}

func dialEndpoint(ctx context.Context, name string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", Address(name))
}
