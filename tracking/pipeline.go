package tracking

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FrameSource yields raw frames lazily, in index order.
// ok is false once the source is exhausted.
type FrameSource interface {
	Next() (frame Frame, ok bool, err error)
}

// SliceSource is a FrameSource over frames already in memory
type SliceSource struct {
	frames []Frame
	pos    int
}

func NewSliceSource(frames []Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

func (source *SliceSource) Next() (Frame, bool, error) {
	if source.pos >= len(source.frames) {
		return Frame{}, false, nil
	}
	frame := source.frames[source.pos]
	source.pos++
	return frame, true, nil
}

// Result is the output of one tracking run
type Result struct {
	RunID uuid.UUID `json:"run_id"`
	// Filtered and compensated frames
	Frames     []Frame      `json:"frames"`
	Tips       []*Tip       `json:"tips"`
	Chopsticks []*Chopstick `json:"chopsticks"`
}

// Pipeline chains reliability filtering, camera motion compensation, tip tracking and chopstick tracking
type Pipeline struct {
	cfg    Configuration
	logger *zap.Logger
	opts   []Option
}

// NewDefaultPipeline creates a default instance of Pipeline. See DefaultConfiguration().
func NewDefaultPipeline(opts ...Option) *Pipeline {
	pipeline, err := NewPipeline(DefaultConfiguration(), opts...)
	if err != nil {
		panic("should be impossible: " + err.Error())
	}
	return pipeline
}

// NewPipeline creates new instance of Pipeline
func NewPipeline(cfg Configuration, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Pipeline{
		cfg:    cfg,
		logger: o.logger,
		opts:   opts,
	}, nil
}

// Run pulls every frame of the source and tracks tips, then chopsticks.
// Tips are tracked while frames are pulled; chopsticks need complete tip histories, so they are
// tracked in a second pass over the compensated frames.
func (p *Pipeline) Run(source FrameSource) (*Result, error) {
	filter, err := NewReliabilityFilter(p.cfg)
	if err != nil {
		return nil, err
	}
	compensator, err := NewMotionCompensator(p.cfg, p.opts...)
	if err != nil {
		return nil, err
	}
	tipTracker, err := NewTipTracker(p.cfg, p.opts...)
	if err != nil {
		return nil, err
	}
	chopstickTracker, err := NewChopstickTracker(p.cfg, p.opts...)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.New(),
		Frames: make([]Frame, 0),
	}
	logger := p.logger.With(zap.String("run_id", result.RunID.String()))

	expectedIndex := 0
	for {
		rawFrame, ok, err := source.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read frame %d", expectedIndex)
		}
		if !ok {
			break
		}
		if rawFrame.Index != expectedIndex {
			return nil, &SequenceGapError{Expected: expectedIndex, Got: rawFrame.Index}
		}
		expectedIndex++

		frame := compensator.Compensate(filter.Filter(rawFrame))
		if err := tipTracker.Track(frame); err != nil {
			return nil, errors.Wrapf(err, "Can't track tips in frame %d", frame.Index)
		}
		result.Frames = append(result.Frames, frame)
	}
	logger.Info("tips tracked", zap.Int("frames", len(result.Frames)), zap.Int("tips", len(tipTracker.Tips())))

	for _, frame := range result.Frames {
		if err := chopstickTracker.Track(frame, tipTracker.Tips()); err != nil {
			return nil, errors.Wrapf(err, "Can't track chopsticks in frame %d", frame.Index)
		}
	}
	logger.Info("chopsticks tracked", zap.Int("chopsticks", len(chopstickTracker.Chopsticks())))

	lastIndex := len(result.Frames) - 1
	for _, tip := range tipTracker.Tips() {
		if err := CheckTipHistory(tip, lastIndex); err != nil {
			return nil, err
		}
	}

	result.Tips = tipTracker.Tips()
	result.Chopsticks = chopstickTracker.Chopsticks()
	return result, nil
}

// RunFrames is a shortcut for Run over frames already in memory
func (p *Pipeline) RunFrames(frames []Frame) (*Result, error) {
	return p.Run(NewSliceSource(frames))
}
