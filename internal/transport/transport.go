package transport

import "context"

// Source delivers the ordered parts of one acquisition message per Recv.
// Recv blocks until a message arrives or the source's context is cancelled;
// the part boundaries are guaranteed by the transport.
type Source interface {
	Recv(ctx context.Context) ([][]byte, error)
	Close() error
}
