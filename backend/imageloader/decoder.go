package imageloader

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"io"

	// Formats handled through image.DecodeConfig and image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"vincit.fi/image-metadata/common/pngtext"
)

const (
	formatGif  = "gif"
	formatJpeg = "jpeg"
	formatPng  = "png"
	formatTiff = "tiff"
	formatWebp = "webp"
)

var errNoFrames = errors.New("image has no frames")

// FrameDecoder decodes every frame of an encoded image.
type FrameDecoder interface {
	DecodeFrames(data []byte) ([]image.Image, string, error)
}

type DefaultFrameDecoder struct {
	FrameDecoder
}

func NewFrameDecoder() FrameDecoder {
	return &DefaultFrameDecoder{}
}

func (s *DefaultFrameDecoder) DecodeFrames(data []byte) ([]image.Image, string, error) {
	if isAnimatedWebp(data) {
		frames, err := decodeWebpFrames(data)
		return frames, formatWebp, err
	}

	if pngtext.IsAnimated(data) {
		frames, err := decodeApngFrames(data)
		return frames, formatPng, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if pngtext.IsPNG(data) {
		format = formatPng
	}

	var frames []image.Image
	switch format {
	case formatGif:
		frames, err = decodeGifFrames(bytes.NewReader(data))
	case formatTiff:
		frames, err = decodeTiffPages(data)
	default:
		frames, err = decodeSingleFrame(data, format)
	}
	if err != nil {
		return nil, format, err
	}
	return frames, format, nil
}

func decodeSingleFrame(data []byte, format string) ([]image.Image, error) {
	var img image.Image
	var err error
	if format == formatJpeg {
		img, err = decodeJpeg(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	return []image.Image{img}, nil
}

// decodeGifFrames renders each frame on the logical screen, honouring the
// disposal method of the frame.
func decodeGifFrames(r io.Reader) ([]image.Image, error) {
	animation, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(animation.Image) == 0 {
		return nil, errNoFrames
	}

	screen := image.Rect(0, 0, animation.Config.Width, animation.Config.Height)
	if screen.Empty() {
		for _, frame := range animation.Image {
			screen = screen.Union(frame.Bounds())
		}
		screen.Min = image.Point{}
	}

	frames := newCompositor(screen.Dx(), screen.Dy())
	for i, frame := range animation.Image {
		dispose := disposeNone
		if i < len(animation.Disposal) {
			switch animation.Disposal[i] {
			case gif.DisposalBackground:
				dispose = disposeBackground
			case gif.DisposalPrevious:
				dispose = disposePrevious
			}
		}
		frames.add(frame, frame.Bounds(), true, dispose)
	}
	return frames.frames, nil
}
