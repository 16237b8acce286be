package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ayusman/posecontrol/internal/pose"
)

// Frames go to the service as a 4-byte big-endian length followed by JPEG bytes.
// The service answers each frame with one JSON line:
//
//	{"poses":[{"score":0.8,"keypoints":[{"part":"nose","score":0.9,"position":{"x":1,"y":2}}]}]}
//
// or {"error":"..."} when inference failed.

// maxFrameSize bounds a single length-prefixed frame in either direction.
const maxFrameSize = 16 << 20

var errFrameTooLarge = errors.New("frame exceeds maximum size")

type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireKeypoint struct {
	Part     string       `json:"part"`
	Score    float64      `json:"score"`
	Position wirePosition `json:"position"`
}

type wirePose struct {
	Score     float64        `json:"score"`
	Keypoints []wireKeypoint `json:"keypoints"`
}

type wireResponse struct {
	Poses []wirePose `json:"poses"`
	Error string     `json:"error,omitempty"`
}

func writeFrame(w io.Writer, data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("write frame of %d bytes: %w", len(data), errFrameTooLarge)
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	if _, err := w.Write(length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

func readFrame(r io.Reader) ([]byte, error) {
	length := make([]byte, 4)
	if _, err := io.ReadFull(r, length); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(length)
	if n > maxFrameSize {
		return nil, fmt.Errorf("read frame of %d bytes: %w", n, errFrameTooLarge)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return data, nil
}

// readPoses parses one response line. Keypoints that fail validation are
// dropped; poses scoring below minScore are skipped. The result is ordered
// by descending pose score.
func readPoses(r *bufio.Reader, minScore float64) ([]pose.Pose, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp wireResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("pose service: %s", resp.Error)
	}

	poses := make([]pose.Pose, 0, len(resp.Poses))
	for _, wp := range resp.Poses {
		if wp.Score < minScore {
			continue
		}
		poses = append(poses, wp.toPose())
	}
	sort.SliceStable(poses, func(i, j int) bool { return poses[i].Score > poses[j].Score })
	return poses, nil
}

func (wp wirePose) toPose() pose.Pose {
	keypoints := make([]pose.Keypoint, 0, len(wp.Keypoints))
	for _, wk := range wp.Keypoints {
		k := pose.Keypoint{
			Part:     pose.Part(wk.Part),
			Position: pose.Position{X: wk.Position.X, Y: wk.Position.Y},
			Score:    wk.Score,
		}
		if k.Validate() != nil {
			continue
		}
		keypoints = append(keypoints, k)
	}
	return pose.New(wp.Score, keypoints)
}
