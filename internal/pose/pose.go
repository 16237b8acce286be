// Package pose defines body keypoints and pose snapshots produced by a pose detector.
package pose

import "fmt"

// Part identifies a body landmark using PoseNet naming.
type Part string

// Body parts reported by PoseNet, in model output order.
const (
	Nose          Part = "nose"
	LeftEye       Part = "leftEye"
	RightEye      Part = "rightEye"
	LeftEar       Part = "leftEar"
	RightEar      Part = "rightEar"
	LeftShoulder  Part = "leftShoulder"
	RightShoulder Part = "rightShoulder"
	LeftElbow     Part = "leftElbow"
	RightElbow    Part = "rightElbow"
	LeftWrist     Part = "leftWrist"
	RightWrist    Part = "rightWrist"
	LeftHip       Part = "leftHip"
	RightHip      Part = "rightHip"
	LeftKnee      Part = "leftKnee"
	RightKnee     Part = "rightKnee"
	LeftAnkle     Part = "leftAnkle"
	RightAnkle    Part = "rightAnkle"
)

// Parts lists every body part in model output order.
var Parts = []Part{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow,
	LeftWrist, RightWrist, LeftHip, RightHip,
	LeftKnee, RightKnee, LeftAnkle, RightAnkle,
}

// SkeletonMinScore is the score both ends of a bone must reach to be part of the skeleton.
const SkeletonMinScore = 0.5

// connections are the bones PoseNet draws between adjacent parts.
var connections = [][2]Part{
	{LeftHip, LeftShoulder}, {LeftElbow, LeftShoulder},
	{LeftElbow, LeftWrist}, {LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle}, {RightHip, RightShoulder},
	{RightElbow, RightShoulder}, {RightElbow, RightWrist},
	{RightHip, RightKnee}, {RightKnee, RightAnkle},
	{LeftShoulder, RightShoulder}, {LeftHip, RightHip},
}

// Position is a point in screen-space pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Keypoint is one detected landmark with its confidence score in [0,1].
type Keypoint struct {
	Part     Part     `json:"part"`
	Position Position `json:"position"`
	Score    float64  `json:"score"`
}

// Validate checks that the keypoint names a part and carries a score in range.
func (k Keypoint) Validate() error {
	if k.Part == "" {
		return fmt.Errorf("keypoint part cannot be empty")
	}
	if k.Score < 0 || k.Score > 1 {
		return fmt.Errorf("keypoint %s: score must be between 0 and 1, got %f", k.Part, k.Score)
	}
	return nil
}

// Bone connects two keypoints; used only for rendering.
type Bone struct {
	From Keypoint `json:"from"`
	To   Keypoint `json:"to"`
}

// Pose is the set of keypoints for one detected body in one frame.
type Pose struct {
	Score     float64    `json:"score"`
	Keypoints []Keypoint `json:"keypoints"`
	Skeleton  []Bone     `json:"skeleton"`
}

// New builds a Pose and derives its skeleton from the keypoints.
func New(score float64, keypoints []Keypoint) Pose {
	p := Pose{Score: score, Keypoints: keypoints}
	p.Skeleton = p.adjacent(SkeletonMinScore)
	return p
}

// Keypoint returns the keypoint for part, or false if the pose lacks it.
func (p Pose) Keypoint(part Part) (Keypoint, bool) {
	for _, k := range p.Keypoints {
		if k.Part == part {
			return k, true
		}
	}
	return Keypoint{}, false
}

// Confidence returns the score for part, or 0 when the part is absent.
func (p Pose) Confidence(part Part) float64 {
	k, ok := p.Keypoint(part)
	if !ok {
		return 0
	}
	return k.Score
}

func (p Pose) adjacent(minScore float64) []Bone {
	var bones []Bone
	for _, c := range connections {
		a, okA := p.Keypoint(c[0])
		b, okB := p.Keypoint(c[1])
		if !okA || !okB || a.Score < minScore || b.Score < minScore {
			continue
		}
		bones = append(bones, Bone{From: a, To: b})
	}
	return bones
}
