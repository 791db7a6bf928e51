// Package framesource provides the frame sources feeding the tracking pipeline:
// on-disk detection caches and detector adapters.
package framesource

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/LdDl/chopsticks-tracker/tracking"
	"github.com/pkg/errors"
)

const objectsFileExt = ".json"

// Directory reads frames from a folder containing one "<frame index>.json" file per frame.
// Each file is a JSON array of detected objects. Files are read lazily, in index order.
type Directory struct {
	path    string
	indices []int
	pos     int
}

// OpenDirectory lists the frame files of the folder
func OpenDirectory(path string) (*Directory, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't list detection folder %s", path)
	}
	indices := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != objectsFileExt {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(name, objectsFileExt))
		if err != nil {
			// Not a frame file
			continue
		}
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return &Directory{
		path:    path,
		indices: indices,
	}, nil
}

// Len returns the number of frame files
func (dir *Directory) Len() int {
	return len(dir.indices)
}

func (dir *Directory) Next() (tracking.Frame, bool, error) {
	if dir.pos >= len(dir.indices) {
		return tracking.Frame{}, false, nil
	}
	index := dir.indices[dir.pos]
	dir.pos++
	objects, err := ReadObjects(dir.path, index)
	if err != nil {
		return tracking.Frame{}, false, err
	}
	return tracking.Frame{Index: index, Objects: objects}, true, nil
}

func objectsFilePath(dirPath string, frameIndex int) string {
	return filepath.Join(dirPath, strconv.Itoa(frameIndex)+objectsFileExt)
}

// ReadObjects loads the detected objects of one frame
func ReadObjects(dirPath string, frameIndex int) ([]tracking.DetectedObject, error) {
	data, err := os.ReadFile(objectsFilePath(dirPath, frameIndex))
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read objects of frame %d", frameIndex)
	}
	objects := make([]tracking.DetectedObject, 0)
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, errors.Wrapf(err, "Can't decode objects of frame %d", frameIndex)
	}
	return objects, nil
}

// WriteObjects stores the detected objects of one frame in the folder
func WriteObjects(dirPath string, frameIndex int, objects []tracking.DetectedObject) error {
	if objects == nil {
		objects = []tracking.DetectedObject{}
	}
	data, err := json.Marshal(objects)
	if err != nil {
		return errors.Wrapf(err, "Can't encode objects of frame %d", frameIndex)
	}
	if err := os.WriteFile(objectsFilePath(dirPath, frameIndex), data, 0o644); err != nil {
		return errors.Wrapf(err, "Can't write objects of frame %d", frameIndex)
	}
	return nil
}
