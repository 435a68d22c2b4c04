package imageloader

import (
	"bytes"
	"image"
	"image/png"

	"github.com/kettek/apng"
)

// decodeApngFrames renders the frames of an animated PNG on a canvas the size
// of the image header. A default image that is not part of the animation is
// kept as the first frame on its own.
func decodeApngFrames(data []byte) ([]image.Image, error) {
	config, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	animation, err := apng.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(animation.Frames) == 0 {
		return nil, errNoFrames
	}

	frames := newCompositor(config.Width, config.Height)
	animated := 0
	for _, frame := range animation.Frames {
		if frame.IsDefault {
			frames.addStandalone(frame.Image)
			continue
		}

		size := frame.Image.Bounds().Size()
		placement := image.Rect(frame.XOffset, frame.YOffset, frame.XOffset+size.X, frame.YOffset+size.Y)
		dispose := apngDisposal(frame.DisposeOp)
		// The first frame has nothing to go back to
		if animated == 0 && dispose == disposePrevious {
			dispose = disposeBackground
		}
		frames.add(frame.Image, placement, frame.BlendOp == apng.BLEND_OP_OVER, dispose)
		animated++
	}
	return frames.frames, nil
}

func apngDisposal(op byte) disposal {
	switch op {
	case apng.DISPOSE_OP_BACKGROUND:
		return disposeBackground
	case apng.DISPOSE_OP_PREVIOUS:
		return disposePrevious
	default:
		return disposeNone
	}
}
