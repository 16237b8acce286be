// Package overlay draws the zone layout and detected skeleton on camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/internal/pose"
	"github.com/ayusman/posecontrol/internal/zone"
)

// Fill opacity of a zone, out of 255.
const (
	IdleAlpha   = 63
	ActiveAlpha = 170
)

// KeypointMinScore is the score a keypoint must exceed to be drawn.
const KeypointMinScore = 0.2

const keypointRadius = 5

var (
	keypointColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	skeletonColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	labelColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type zoneStyle struct {
	label string
	color color.RGBA
}

var styles = map[zone.Role]zoneStyle{
	zone.RoleRightShoulder: {"Right Shoulder", color.RGBA{R: 0, G: 255, B: 0, A: 255}},
	zone.RoleLeftShoulder:  {"Left Shoulder", color.RGBA{R: 255, G: 0, B: 0, A: 255}},
	zone.RoleShoulders:     {"Shoulders", color.RGBA{R: 0, G: 0, B: 255, A: 255}},
	zone.RoleHands:         {"Hands", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
}

// Label returns the caption drawn inside a zone.
func Label(r zone.Role) string { return styles[r].label }

// LayoutSource supplies the zone layout for each frame.
type LayoutSource interface {
	Layout() zone.Layout
}

// Renderer draws frames in camera coordinates, mirrors them, then captions the
// zones so the text reads correctly. It keeps the last encoded frame for streaming.
type Renderer struct {
	layouts LayoutSource

	mu     sync.RWMutex
	active zone.Role
	latest []byte
	seq    uint64
}

// NewRenderer creates a Renderer reading zones from layouts.
func NewRenderer(layouts LayoutSource) *Renderer {
	return &Renderer{layouts: layouts}
}

// HandleEvent highlights the zone of a fired command until it is released.
// It is meant to be subscribed to a gesture.Engine.
func (r *Renderer) HandleEvent(ev gesture.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch ev.Type {
	case gesture.EventFired:
		r.active = ev.Command.Role()
	case gesture.EventReleased:
		r.active = ""
	}
}

// Active returns the highlighted zone role, if any.
func (r *Renderer) Active() (zone.Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.active != ""
}

// Draw renders zones and the skeleton of every pose onto frame in place and
// mirrors it horizontally.
func (r *Renderer) Draw(frame *gocv.Mat, poses []pose.Pose) {
	layout := r.layouts.Layout()
	active, _ := r.Active()

	for _, z := range layout.Zones() {
		alpha := IdleAlpha
		if z.Role == active {
			alpha = ActiveAlpha
		}
		fillRect(frame, rect(z), styles[z.Role].color, alpha)
	}

	for _, p := range poses {
		drawPose(frame, p)
	}

	gocv.Flip(*frame, frame, 1)

	width := frame.Cols()
	for _, z := range layout.Zones() {
		gocv.PutText(frame, Label(z.Role), labelOrigin(z, width), gocv.FontHersheySimplex, 0.5, labelColor, 1)
	}
}

// Render draws frame and stores it as the latest JPEG.
func (r *Renderer) Render(frame *gocv.Mat, poses []pose.Pose) error {
	r.Draw(frame, poses)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	defer buf.Close()

	data := append([]byte(nil), buf.GetBytes()...)

	r.mu.Lock()
	r.latest = data
	r.seq++
	r.mu.Unlock()
	return nil
}

// Latest returns the last rendered JPEG and its sequence number.
// The sequence is 0 until a frame has been rendered.
func (r *Renderer) Latest() ([]byte, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.seq
}

func drawPose(frame *gocv.Mat, p pose.Pose) {
	for _, k := range p.Keypoints {
		if k.Score > KeypointMinScore {
			gocv.Circle(frame, point(k.Position), keypointRadius, keypointColor, -1)
		}
	}
	for _, b := range p.Skeleton {
		gocv.Line(frame, point(b.From.Position), point(b.To.Position), skeletonColor, 2)
	}
}

// fillRect blends a filled rectangle over frame at alpha/255 opacity.
func fillRect(frame *gocv.Mat, r image.Rectangle, c color.RGBA, alpha int) {
	layer := frame.Clone()
	defer layer.Close()

	gocv.Rectangle(&layer, r, c, -1)
	a := float64(alpha) / 255
	gocv.AddWeighted(layer, a, *frame, 1-a, 0, frame)
}

func rect(z zone.Zone) image.Rectangle {
	return image.Rect(int(z.XLower), int(z.YLower), int(z.XUpper), int(z.YUpper))
}

func point(p pose.Position) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

// labelOrigin places a caption near the top-left corner of z as it appears
// after mirroring.
func labelOrigin(z zone.Zone, width int) image.Point {
	return image.Pt(width-int(z.XUpper)+6, int(z.YLower)+18)
}
