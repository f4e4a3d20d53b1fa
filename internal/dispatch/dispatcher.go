package dispatch

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tomoRelay/internal/entity"
	"tomoRelay/internal/params"
	"tomoRelay/internal/sink"
)

// Parameter keys consumed by the dispatcher. The -/+ prefix is part of the
// key: - is set this cycle, + carried over from the previous one.
const (
	KeyImageKey   = "-image_key"
	KeyDType      = "-dtype"
	KeyNumAngles  = "-nangles"
	KeyAngleRange = "-arange"
)

var (
	colKeys = []string{"-nrays", "+nrays"}
	rowKeys = []string{"-nslices", "+nslices"}
)

// Ancillary metadata key names, written under the configured namespace.
const (
	MetaNumAngles    = "NumAngles"
	MetaRotationStep = "RotationStep"
	MetaFrameType    = "FrameType"
)

var (
	ErrMissingRoutingKey    = errors.New("dispatch: missing -image_key")
	ErrMissingShapeKey      = errors.New("dispatch: missing frame shape keys")
	ErrUnknownPixelType     = errors.New("dispatch: unresolved pixel dtype")
	ErrDegenerateAngleRange = errors.New("dispatch: rotation step undefined for a single angle")
)

// Sinks is the fixed set of destinations a dispatcher owns. Theta is wired
// and lifecycle-managed but never written to; see broadcastTheta.
type Sinks struct {
	Projection sink.Broadcaster
	White      sink.Broadcaster
	Dark       sink.Broadcaster
	Theta      sink.Broadcaster
	Meta       sink.MetaWriter
}

func (s Sinks) broadcasters() []sink.Broadcaster {
	return []sink.Broadcaster{s.Projection, s.White, s.Dark, s.Theta}
}

// Start brings up every broadcast channel.
func (s Sinks) Start() error {
	for _, b := range s.broadcasters() {
		if err := b.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Stop shuts down every broadcast channel.
func (s Sinks) Stop() error {
	var firstErr error
	for _, b := range s.broadcasters() {
		if err := b.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Dispatcher routes valid envelopes to the sink matching their image kind
// and publishes the derived ancillary metadata.
type Dispatcher struct {
	sinks  Sinks
	logger *zap.Logger
}

func New(sinks Sinks, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sinks:  sinks,
		logger: logger.Named("dispatch"),
	}
}

// Dispatch handles one valid envelope. routed reports whether an image
// broadcast happened: an image key outside 0/1/2 routes nowhere but still
// gets its ancillary metadata written, matching the controller protocol.
func (d *Dispatcher) Dispatch(env *entity.Envelope) (routed bool, err error) {
	dict := params.Decode(env.ParamsRaw)

	imageKey, err := dict.Require(KeyImageKey)
	if err != nil {
		d.logger.Warn("not a valid image frame, skipping", zap.Uint32("frameID", env.FrameID), zap.Any("params", dict))
		return false, ErrMissingRoutingKey
	}

	cols, rows, err := frameShape(dict)
	if err != nil {
		d.logger.Warn("image shape missing from params", zap.Uint32("frameID", env.FrameID), zap.Any("params", dict))
		return false, err
	}

	dtype, err := pixelType(dict)
	if err != nil {
		return false, err
	}

	kind, err := strconv.Atoi(imageKey)
	if err != nil {
		return false, fmt.Errorf("parse %s=%q: %w", KeyImageKey, imageKey, err)
	}

	routed = true
	ts := time.Now()
	switch entity.ImageKind(kind) {
	case entity.KindProjection:
		if err := d.sinks.Projection.Broadcast(env.FrameID, env.Pixels, cols, rows, dtype, ts); err != nil {
			return false, err
		}
		if err := d.broadcastTheta(dict); err != nil {
			return true, err
		}
	case entity.KindWhite:
		if err := d.sinks.White.Broadcast(env.FrameID, env.Pixels, cols, rows, dtype, ts); err != nil {
			return false, err
		}
	case entity.KindDark:
		if err := d.sinks.Dark.Broadcast(env.FrameID, env.Pixels, cols, rows, dtype, ts); err != nil {
			return false, err
		}
	default:
		routed = false
		d.logger.Warn("unroutable image kind", zap.Int("imageKey", kind), zap.Uint32("frameID", env.FrameID))
	}

	if err := d.writeAncillary(dict, imageKey); err != nil {
		return routed, err
	}
	return routed, nil
}

func frameShape(dict params.Dict) (cols, rows int32, err error) {
	c, err := dict.IntFirst(colKeys...)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMissingShapeKey, err)
	}
	r, err := dict.IntFirst(rowKeys...)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMissingShapeKey, err)
	}
	return int32(c), int32(r), nil
}

func pixelType(dict params.Dict) (entity.DType, error) {
	v, ok := dict[KeyDType]
	if !ok || v != "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownPixelType, v)
	}
	// TODO: read the real camera datatype once BCS forwards it instead of
	// an empty -dtype.
	return entity.DTypeUint16, nil
}

// broadcastTheta computes the projection angles for a scan. The sequence is
// only logged for now; the theta sink is held for when the downstream
// consumer grows a theta channel.
func (d *Dispatcher) broadcastTheta(dict params.Dict) error {
	numAngles, err := dict.Int(KeyNumAngles)
	if err != nil {
		return err
	}
	angleRange, err := dict.Float(KeyAngleRange)
	if err != nil {
		return err
	}
	angles := linspace(0, angleRange, numAngles)
	d.logger.Info("theta computed, broadcast not implemented",
		zap.Int("numAngles", len(angles)), zap.Float64("arange", angleRange))
	return nil
}

func (d *Dispatcher) writeAncillary(dict params.Dict, imageKey string) error {
	numAngles, err := dict.Int(KeyNumAngles)
	if err != nil {
		return err
	}
	if err := d.sinks.Meta.Put(MetaNumAngles, numAngles); err != nil {
		return err
	}

	angleRange, err := dict.Float(KeyAngleRange)
	if err != nil {
		return err
	}
	if numAngles == 1 {
		return fmt.Errorf("%w: %s=1", ErrDegenerateAngleRange, KeyNumAngles)
	}
	if err := d.sinks.Meta.Put(MetaRotationStep, angleRange/float64(numAngles-1)); err != nil {
		return err
	}

	return d.sinks.Meta.Put(MetaFrameType, imageKey)
}

// linspace returns n evenly spaced values over [start, stop], inclusive at
// both ends.
func linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	out[0] = start
	if n == 1 {
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := 1; i < n; i++ {
		out[i] = start + float64(i)*step
	}
	return out
}
