package transport

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
	"go.uber.org/zap"
)

// ZMQSource subscribes to the acquisition controller's ZeroMQ PUB stream.
// One multipart message is one frame.
type ZMQSource struct {
	sock   zmq4.Socket
	logger *zap.Logger
}

// Dial connects a subscribe-all SUB socket to addr. The socket is bound to
// ctx: cancelling it unblocks any in-flight Recv.
func Dial(ctx context.Context, addr string, logger *zap.Logger) (*ZMQSource, error) {
	sock := zmq4.NewSub(ctx)
	if err := sock.Dial(addr); err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		sock.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	logger = logger.Named("zmq")
	logger.Info("subscribed to acquisition stream", zap.String("addr", addr))
	return &ZMQSource{sock: sock, logger: logger}, nil
}

func (s *ZMQSource) Recv(ctx context.Context) ([][]byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, err
	}
	return msg.Frames, nil
}

func (s *ZMQSource) Close() error {
	return s.sock.Close()
}
