package tracking

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// tipSmoother estimates the box of a tip matched with a new detection
type tipSmoother interface {
	smooth(tip *Tip, detection DetectedObject) (Rectangle, error)
}

func newTipSmoother(cfg Configuration) tipSmoother {
	switch cfg.TipSmoothing {
	case TipSmoothingKalman:
		return newKalmanSmoother()
	default:
		return movingAverageSmoother{nbShapes: cfg.NbShapesToConsiderForComputingAverageTip}
	}
}

// movingAverageSmoother averages the last nbShapes shapes (raw detection box when the shape has one)
// with the new detection box
type movingAverageSmoother struct {
	nbShapes int
}

func (s movingAverageSmoother) smooth(tip *Tip, detection DetectedObject) (Rectangle, error) {
	recentShapes := tip.recentShapes(s.nbShapes)
	n := len(recentShapes) + 1
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	widths := make([]float64, 0, n)
	heights := make([]float64, 0, n)
	for _, shape := range recentShapes {
		box := shape.rawBox()
		xs = append(xs, float64(box.X))
		ys = append(ys, float64(box.Y))
		widths = append(widths, float64(box.Width))
		heights = append(heights, float64(box.Height))
	}
	xs = append(xs, float64(detection.X))
	ys = append(ys, float64(detection.Y))
	widths = append(widths, float64(detection.Width))
	heights = append(heights, float64(detection.Height))
	return Rectangle{
		X:      roundHalfUp(stat.Mean(xs, nil)),
		Y:      roundHalfUp(stat.Mean(ys, nil)),
		Width:  roundHalfUp(stat.Mean(widths, nil)),
		Height: roundHalfUp(stat.Mean(heights, nil)),
	}, nil
}

// kalmanSmoother keeps one 8-D Kalman filter per tip.
// State vector: [cx, cy, w, h, vx, vy, vw, vh] - center position, size, and velocities.
// Filters are only stepped when their tip is matched, so frozen shapes do not move.
type kalmanSmoother struct {
	filters map[TipID]*kalman_filter.KalmanBBox
}

func newKalmanSmoother() *kalmanSmoother {
	return &kalmanSmoother{
		filters: make(map[TipID]*kalman_filter.KalmanBBox),
	}
}

func (s *kalmanSmoother) smooth(tip *Tip, detection DetectedObject) (Rectangle, error) {
	kf, ok := s.filters[tip.ID]
	if !ok {
		kf = newTipKalmanFilter(tip.LastShape().rawBox())
		s.filters[tip.ID] = kf
	}
	kf.Predict()
	center := detection.Center()
	err := kf.Update(center.X, center.Y, float64(detection.Width), float64(detection.Height))
	if err != nil {
		return Rectangle{}, errors.Wrapf(err, "Can't update Kalman filter of tip %s", tip.ID)
	}
	cx, cy, w, h := kf.GetState()
	return Rectangle{
		X:      roundHalfUp(cx - w/2.0),
		Y:      roundHalfUp(cy - h/2.0),
		Width:  roundHalfUp(w),
		Height: roundHalfUp(h),
	}, nil
}

func newTipKalmanFilter(box Rectangle) *kalman_filter.KalmanBBox {
	center := box.Center()
	// Kalman filter props
	dt := 1.0
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	return kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, float64(box.Width), float64(box.Height)),
	)
}
