package framesource

import (
	"fmt"
	"testing"

	"github.com/LdDl/chopsticks-tracker/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDetector yields one tip per frame for nbFrames frames
type fakeDetector struct {
	nbFrames int
	calls    []int
	failAt   int
}

func (d *fakeDetector) DetectObjects(frameIndex int) ([]tracking.DetectedObject, bool, error) {
	d.calls = append(d.calls, frameIndex)
	if frameIndex == d.failAt {
		return nil, false, fmt.Errorf("broken frame")
	}
	if frameIndex >= d.nbFrames {
		return nil, false, nil
	}
	return []tracking.DetectedObject{
		{Rectangle: tracking.NewRect(100+frameIndex, 100, 20, 20), ObjectType: tracking.ObjectTypeBigTip, Confidence: 0.95},
	}, true, nil
}

func drain(t *testing.T, source tracking.FrameSource) []tracking.Frame {
	t.Helper()
	frames := make([]tracking.Frame, 0)
	for {
		frame, ok, err := source.Next()
		require.NoError(t, err)
		if !ok {
			return frames
		}
		frames = append(frames, frame)
	}
}

func TestDetectorSource(t *testing.T) {
	detector := &fakeDetector{nbFrames: 3, failAt: -1}
	frames := drain(t, NewDetectorSource(detector))
	require.Len(t, frames, 3)
	for i, frame := range frames {
		assert.Equal(t, i, frame.Index)
		assert.Equal(t, 100+i, frame.Objects[0].X)
	}
}

func TestDetectorSourceError(t *testing.T) {
	source := NewDetectorSource(&fakeDetector{nbFrames: 3, failAt: 1})
	_, ok, err := source.Next()
	require.NoError(t, err)
	require.True(t, ok)
	_, _, err = source.Next()
	assert.Error(t, err)
}

func TestCachedDetectorSource(t *testing.T) {
	dir := t.TempDir()

	detector := &fakeDetector{nbFrames: 3, failAt: -1}
	source, err := NewCachedDetectorSource(dir, detector)
	require.NoError(t, err)
	firstRun := drain(t, source)
	require.Len(t, firstRun, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, detector.calls)

	// Second run only asks the detector for the frame after the cached ones
	cachedDetector := &fakeDetector{nbFrames: 3, failAt: -1}
	source, err = NewCachedDetectorSource(dir, cachedDetector)
	require.NoError(t, err)
	secondRun := drain(t, source)
	assert.Equal(t, []int{3}, cachedDetector.calls)
	assert.Equal(t, firstRun, secondRun)

	dirSource, err := OpenDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, dirSource.Len())
}
