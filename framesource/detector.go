package framesource

import (
	"os"

	"github.com/LdDl/chopsticks-tracker/tracking"
	"github.com/pkg/errors"
)

// DetectorSource pulls frames from a detector, one frame at a time
type DetectorSource struct {
	detector   tracking.Detector
	frameIndex int
}

func NewDetectorSource(detector tracking.Detector) *DetectorSource {
	return &DetectorSource{detector: detector}
}

func (source *DetectorSource) Next() (tracking.Frame, bool, error) {
	objects, ok, err := source.detector.DetectObjects(source.frameIndex)
	if err != nil {
		return tracking.Frame{}, false, errors.Wrapf(err, "Can't detect objects in frame %d", source.frameIndex)
	}
	if !ok {
		return tracking.Frame{}, false, nil
	}
	frame := tracking.Frame{Index: source.frameIndex, Objects: objects}
	source.frameIndex++
	return frame, true, nil
}

// CachedDetectorSource avoids running the detector again on a video already processed:
// detections of each frame are read from the cache folder when present,
// otherwise they are computed by the detector and written to the folder.
type CachedDetectorSource struct {
	dirPath    string
	detector   tracking.Detector
	frameIndex int
}

// NewCachedDetectorSource creates the cache folder if needed
func NewCachedDetectorSource(dirPath string, detector tracking.Detector) (*CachedDetectorSource, error) {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, errors.Wrapf(err, "Can't create cache folder %s", dirPath)
	}
	return &CachedDetectorSource{
		dirPath:  dirPath,
		detector: detector,
	}, nil
}

func (source *CachedDetectorSource) Next() (tracking.Frame, bool, error) {
	index := source.frameIndex
	if _, err := os.Stat(objectsFilePath(source.dirPath, index)); err == nil {
		objects, err := ReadObjects(source.dirPath, index)
		if err != nil {
			return tracking.Frame{}, false, err
		}
		source.frameIndex++
		return tracking.Frame{Index: index, Objects: objects}, true, nil
	}

	objects, ok, err := source.detector.DetectObjects(index)
	if err != nil {
		return tracking.Frame{}, false, errors.Wrapf(err, "Can't detect objects in frame %d", index)
	}
	if !ok {
		return tracking.Frame{}, false, nil
	}
	if err := WriteObjects(source.dirPath, index, objects); err != nil {
		return tracking.Frame{}, false, err
	}
	source.frameIndex++
	return tracking.Frame{Index: index, Objects: objects}, true, nil
}
