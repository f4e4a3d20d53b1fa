package relay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tomoRelay/internal/decoder"
	"tomoRelay/internal/dispatch"
	"tomoRelay/internal/entity"
	"tomoRelay/internal/transport"
)

// Service runs the receive -> decode -> classify -> dispatch loop. Frames
// are processed strictly one at a time, in arrival order; a fault on one
// frame never stops the next.
type Service struct {
	source     transport.Source
	dispatcher *dispatch.Dispatcher
	interval   time.Duration
	logger     *zap.Logger

	wg     *sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	stats  stats
}

func New(source transport.Source, dispatcher *dispatch.Dispatcher, interval time.Duration, logger *zap.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		source:     source,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger.Named("relay"),
		wg:         &sync.WaitGroup{},
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (r *Service) Start() {
	r.wg.Add(1)
	go r.monitor()
	r.logger.Info("started service", zap.Duration("interval", r.interval))
}

// Stop cancels the loop and closes the transport. Callers should Wait
// before tearing down the sinks.
func (r *Service) Stop() {
	r.cancel()
	if err := r.source.Close(); err != nil {
		r.logger.Error("close source", zap.Error(err))
	}
}

func (r *Service) Wait() {
	r.wg.Wait()
}

func (r *Service) monitor() {
	defer r.wg.Done()
	for {
		// Fixed sleep at the top of each cycle: the loop's only pacing.
		select {
		case <-r.ctx.Done():
			r.logger.Info("cancellation received, stopping loop")
			return
		case <-time.After(r.interval):
		}

		parts, err := r.source.Recv(r.ctx)
		if err != nil {
			if r.ctx.Err() != nil {
				r.logger.Info("cancellation received, stopping loop")
				return
			}
			r.logger.Error("receive failed", zap.Error(err))
			continue
		}

		r.process(parts)
	}
}

// process handles one raw message end to end. Anything that goes wrong is
// frame-scoped: logged, counted, dropped.
func (r *Service) process(parts [][]byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.stats.faults.Add(1)
			r.logger.Error("frame processing panicked", zap.Any("panic", rec))
		}
	}()

	r.stats.received.Add(1)

	env, err := decoder.Decode(parts)
	if err != nil {
		r.stats.framing.Add(1)
		r.logger.Debug("dropping malformed frame", zap.Error(err))
		return
	}

	recvID := uuid.NewString()
	switch decoder.Classify(env) {
	case entity.ClassFinal:
		r.stats.final.Add(1)
		r.logger.Info("received -writedone from acquisition", zap.String("recvID", recvID))
		return
	case entity.ClassGarbage:
		r.stats.garbage.Add(1)
		r.logger.Info("ignoring frame with garbage metadata tag, controller probably restarted", zap.String("recvID", recvID))
		return
	case entity.ClassNull:
		r.stats.null.Add(1)
		r.logger.Info("null frame, probably the beginning or end of a scan",
			zap.String("recvID", recvID), zap.Int32("rows", env.Rows), zap.Int32("cols", env.Cols))
		return
	}

	routed, err := r.dispatcher.Dispatch(env)
	if err != nil {
		r.stats.faults.Add(1)
		r.logger.Error("frame failed to dispatch",
			zap.String("recvID", recvID), zap.Uint32("frameID", env.FrameID), zap.Error(err))
		return
	}
	if !routed {
		r.stats.unrouted.Add(1)
	}
	r.stats.dispatched.Add(1)
}
