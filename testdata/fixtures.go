// Package testdata provides recorded pose snapshots and blank frames for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecontrol/internal/pose"
	"github.com/ayusman/posecontrol/internal/zone"
)

//go:embed poses/*.json
var posesFS embed.FS

// snapshot mirrors one line of pose service output.
type snapshot struct {
	Poses []struct {
		Score     float64         `json:"score"`
		Keypoints []pose.Keypoint `json:"keypoints"`
	} `json:"poses"`
}

// LoadPoses loads a recorded snapshot by name, e.g. "hands_up".
func LoadPoses(name string) ([]pose.Pose, error) {
	data, err := posesFS.ReadFile("poses/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load poses %s: %w", name, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode poses %s: %w", name, err)
	}

	poses := make([]pose.Pose, 0, len(snap.Poses))
	for _, p := range snap.Poses {
		poses = append(poses, pose.New(p.Score, p.Keypoints))
	}
	return poses, nil
}

// LoadSequence loads several snapshots in order, one per frame.
func LoadSequence(names ...string) ([][]pose.Pose, error) {
	frames := make([][]pose.Pose, 0, len(names))
	for _, name := range names {
		poses, err := LoadPoses(name)
		if err != nil {
			return nil, err
		}
		frames = append(frames, poses)
	}
	return frames, nil
}

// Names lists the available snapshots.
func Names() []string {
	entries, err := posesFS.ReadDir("poses")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// BlankFrame returns a black frame the size of the zone canvas. The caller must close it.
func BlankFrame() gocv.Mat {
	return gocv.NewMatWithSize(zone.CanvasHeight, zone.CanvasWidth, gocv.MatTypeCV8UC3)
}
