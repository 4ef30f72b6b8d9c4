// Package overlay draws detected skeletons onto retained frames for report
// snapshots.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/shree2604/badminton-ai/internal/pose"
	"github.com/shree2604/badminton-ai/internal/video"
)

// minVisibility hides joints the estimator was unsure about.
const minVisibility = 0.3

// Options tune the rendered snapshot.
type Options struct {
	Width       int // output width; frame is scaled to fit, 0 keeps frame size
	Height      int
	LineWidth   float64
	JointRadius float64
	Quality     int // JPEG quality
}

func DefaultOptions() Options {
	return Options{
		LineWidth:   2,
		JointRadius: 4,
		Quality:     85,
	}
}

// Renderer annotates frames with the detected skeleton.
type Renderer struct {
	opts  Options
	limb  color.Color
	joint color.Color
}

func NewRenderer(opts Options) *Renderer {
	if opts.LineWidth <= 0 {
		opts.LineWidth = 2
	}
	if opts.JointRadius <= 0 {
		opts.JointRadius = 4
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}
	return &Renderer{
		opts:  opts,
		limb:  color.RGBA{G: 255, A: 255},
		joint: color.RGBA{R: 255, G: 80, A: 255},
	}
}

// Render draws the skeleton over the frame and returns an annotated JPEG.
func (r *Renderer) Render(frame video.Frame, kp *pose.Keypoints) ([]byte, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("cannot render empty frame")
	}

	width, height := frame.Width, frame.Height
	if r.opts.Width > 0 && r.opts.Height > 0 {
		width, height = r.opts.Width, r.opts.Height
	}

	dc := gg.NewContext(width, height)

	src := frame.Image()
	if width != frame.Width || height != frame.Height {
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
		dc.DrawImage(scaled, 0, 0)
	} else {
		dc.DrawImage(src, 0, 0)
	}

	if kp != nil {
		r.drawSkeleton(dc, kp, float64(width), float64(height))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: r.opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// limbs pairs the tracked joints to connect with line segments.
func limbs(kp *pose.Keypoints) [][2]*pose.Landmark {
	return [][2]*pose.Landmark{
		{kp.Nose, kp.LeftShoulder},
		{kp.Nose, kp.RightShoulder},
		{kp.LeftShoulder, kp.RightShoulder},
		{kp.LeftShoulder, kp.LeftElbow},
		{kp.LeftElbow, kp.LeftWrist},
		{kp.RightShoulder, kp.RightElbow},
		{kp.RightElbow, kp.RightWrist},
	}
}

func joints(kp *pose.Keypoints) []*pose.Landmark {
	return []*pose.Landmark{
		kp.Nose,
		kp.LeftShoulder, kp.RightShoulder,
		kp.LeftElbow, kp.RightElbow,
		kp.LeftWrist, kp.RightWrist,
	}
}

func visible(lm *pose.Landmark) bool {
	return lm != nil && lm.Visibility >= minVisibility
}

func (r *Renderer) drawSkeleton(dc *gg.Context, kp *pose.Keypoints, w, h float64) {
	dc.SetColor(r.limb)
	dc.SetLineWidth(r.opts.LineWidth)
	for _, pair := range limbs(kp) {
		if !visible(pair[0]) || !visible(pair[1]) {
			continue
		}
		dc.DrawLine(pair[0].X*w, pair[0].Y*h, pair[1].X*w, pair[1].Y*h)
		dc.Stroke()
	}

	dc.SetColor(r.joint)
	for _, lm := range joints(kp) {
		if !visible(lm) {
			continue
		}
		dc.DrawCircle(lm.X*w, lm.Y*h, r.opts.JointRadius)
		dc.Fill()
	}
}

// RenderAll annotates every retained frame that has keypoints in the
// analysis, keyed by frame number.
func (r *Renderer) RenderAll(snapshots map[int]video.Frame, analysis *video.Analysis) (map[int][]byte, error) {
	keypointsByFrame := make(map[int]*pose.Keypoints, len(analysis.Results))
	for _, result := range analysis.Results {
		if result.Keypoints != nil {
			keypointsByFrame[result.FrameNumber] = result.Keypoints
		}
	}

	rendered := make(map[int][]byte)
	for frameNumber, frame := range snapshots {
		kp, ok := keypointsByFrame[frameNumber]
		if !ok {
			continue
		}
		data, err := r.Render(frame, kp)
		if err != nil {
			return nil, fmt.Errorf("failed to render frame %d: %w", frameNumber, err)
		}
		rendered[frameNumber] = data
	}
	return rendered, nil
}
