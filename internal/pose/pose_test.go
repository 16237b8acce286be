package pose

import "testing"

func TestPose_Keypoint(t *testing.T) {
	p := Standing()

	t.Run("returns present part", func(t *testing.T) {
		k, ok := p.Keypoint(RightShoulder)
		if !ok {
			t.Fatal("expected rightShoulder to be present")
		}
		if k.Position.X != 260 || k.Position.Y != 200 {
			t.Errorf("unexpected position %+v", k.Position)
		}
	})

	t.Run("missing part reports not found", func(t *testing.T) {
		q := p.Without(LeftWrist)
		if _, ok := q.Keypoint(LeftWrist); ok {
			t.Error("expected leftWrist to be absent")
		}
		if c := q.Confidence(LeftWrist); c != 0 {
			t.Errorf("expected confidence 0 for absent part, got %f", c)
		}
	})

	t.Run("empty pose has no parts", func(t *testing.T) {
		var empty Pose
		if _, ok := empty.Keypoint(Nose); ok {
			t.Error("expected no keypoints in zero pose")
		}
	})
}

func TestPose_With(t *testing.T) {
	p := Standing()
	q := p.With(LeftWrist, 10, 20, 0.3)

	if k, _ := q.Keypoint(LeftWrist); k.Position.X != 10 || k.Score != 0.3 {
		t.Errorf("expected moved wrist, got %+v", k)
	}
	if k, _ := p.Keypoint(LeftWrist); k.Position.X != 400 {
		t.Error("With must not mutate the original pose")
	}

	r := p.Without(Nose).With(Nose, 1, 2, 0.5)
	if len(r.Keypoints) != len(Parts) {
		t.Errorf("expected %d keypoints, got %d", len(Parts), len(r.Keypoints))
	}
}

func TestPose_Skeleton(t *testing.T) {
	t.Run("full pose links every connection", func(t *testing.T) {
		p := Standing()
		if len(p.Skeleton) != len(connections) {
			t.Errorf("expected %d bones, got %d", len(connections), len(p.Skeleton))
		}
	})

	t.Run("low scores drop bones", func(t *testing.T) {
		p := Standing().With(LeftShoulder, 380, 200, 0.4)
		for _, b := range p.Skeleton {
			if b.From.Part == LeftShoulder || b.To.Part == LeftShoulder {
				t.Errorf("bone %s-%s should be dropped", b.From.Part, b.To.Part)
			}
		}
		// leftHip-leftShoulder, leftElbow-leftShoulder, leftShoulder-rightShoulder
		if want := len(connections) - 3; len(p.Skeleton) != want {
			t.Errorf("expected %d bones, got %d", want, len(p.Skeleton))
		}
	})
}

func TestKeypoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		k       Keypoint
		wantErr bool
	}{
		{"valid", Keypoint{Part: Nose, Score: 0.5}, false},
		{"bounds inclusive", Keypoint{Part: Nose, Score: 1}, false},
		{"empty part", Keypoint{Score: 0.5}, true},
		{"negative score", Keypoint{Part: Nose, Score: -0.1}, true},
		{"score above one", Keypoint{Part: Nose, Score: 1.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.k.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
