package pipe

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/fadedlamp42/freezeview/internal/protocol"
)

// LineReader is the read half Consume needs.
type LineReader interface {
	ReadLine() (string, error)
}

// Consume runs the read loop: every line is decoded and handed to sink in
// arrival order. Lines that fail to decode are logged and dropped so one
// corrupt frame cannot end the session. Consume returns nil on a clean
// end-of-stream and the *ChannelError otherwise.
//
// sink runs on the reading goroutine; it must hand the event off rather
// than touch UI state.
func Consume(r LineReader, sink func(protocol.Event), logger *zap.Logger) error {
	var received, dropped int
	for {
		line, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("pipe closed by peer",
					zap.Int("received", received),
					zap.Int("dropped", dropped))
				return nil
			}
			logger.Error("pipe read failed", zap.Error(err))
			return err
		}

		ev, err := protocol.Decode(line)
		if err != nil {
			dropped++
			logger.Warn("dropping undecodable line", zap.String("line", line), zap.Error(err))
			continue
		}
		received++
		logger.Debug("transition", zap.Stringer("event", ev))
		sink(ev)
	}
}
