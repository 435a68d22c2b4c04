package imageloader

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

type disposal int

const (
	disposeNone disposal = iota
	disposeBackground
	disposePrevious
)

// compositor renders animation frames on a canvas that starts transparent.
type compositor struct {
	canvas *image.NRGBA
	frames []image.Image
}

func newCompositor(width int, height int) *compositor {
	return &compositor{canvas: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// add draws img into placement, keeps a copy of the whole canvas as the next
// frame and then disposes the area as requested.
func (s *compositor) add(img image.Image, placement image.Rectangle, over bool, dispose disposal) {
	var previous *image.NRGBA
	if dispose == disposePrevious {
		previous = imaging.Clone(s.canvas)
	}

	op := draw.Src
	if over {
		op = draw.Over
	}
	draw.Draw(s.canvas, placement, img, img.Bounds().Min, op)
	s.frames = append(s.frames, imaging.Clone(s.canvas))

	switch dispose {
	case disposeBackground:
		draw.Draw(s.canvas, placement, image.Transparent, image.Point{}, draw.Src)
	case disposePrevious:
		s.canvas = previous
	}
}

// addStandalone keeps img as a frame of its own without touching the canvas.
func (s *compositor) addStandalone(img image.Image) {
	s.frames = append(s.frames, imaging.Clone(img))
}
