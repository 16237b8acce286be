package pose

// Standing returns a centred, upright pose on a 640x480 canvas with every part at score 0.9.
// Shoulders sit around y=200 and wrists hang at hip height, so no zone is occupied.
func Standing() Pose {
	at := map[Part]Position{
		Nose:          {X: 320, Y: 120},
		LeftEye:       {X: 335, Y: 110},
		RightEye:      {X: 305, Y: 110},
		LeftEar:       {X: 350, Y: 115},
		RightEar:      {X: 290, Y: 115},
		LeftShoulder:  {X: 380, Y: 200},
		RightShoulder: {X: 260, Y: 200},
		LeftElbow:     {X: 395, Y: 270},
		RightElbow:    {X: 245, Y: 270},
		LeftWrist:     {X: 400, Y: 330},
		RightWrist:    {X: 240, Y: 330},
		LeftHip:       {X: 360, Y: 340},
		RightHip:      {X: 280, Y: 340},
		LeftKnee:      {X: 360, Y: 410},
		RightKnee:     {X: 280, Y: 410},
		LeftAnkle:     {X: 360, Y: 470},
		RightAnkle:    {X: 280, Y: 470},
	}
	keypoints := make([]Keypoint, 0, len(Parts))
	for _, part := range Parts {
		keypoints = append(keypoints, Keypoint{Part: part, Position: at[part], Score: 0.9})
	}
	return New(0.9, keypoints)
}

// With returns a copy of p with part moved to (x, y) at the given score.
// The part is appended if p lacks it. The skeleton is re-derived.
func (p Pose) With(part Part, x, y, score float64) Pose {
	keypoints := make([]Keypoint, 0, len(p.Keypoints)+1)
	found := false
	for _, k := range p.Keypoints {
		if k.Part == part {
			k = Keypoint{Part: part, Position: Position{X: x, Y: y}, Score: score}
			found = true
		}
		keypoints = append(keypoints, k)
	}
	if !found {
		keypoints = append(keypoints, Keypoint{Part: part, Position: Position{X: x, Y: y}, Score: score})
	}
	return New(p.Score, keypoints)
}

// Without returns a copy of p with part removed.
func (p Pose) Without(part Part) Pose {
	keypoints := make([]Keypoint, 0, len(p.Keypoints))
	for _, k := range p.Keypoints {
		if k.Part != part {
			keypoints = append(keypoints, k)
		}
	}
	return New(p.Score, keypoints)
}
