//go:build cgo

package imageloader

import (
	"image"
	"io"

	"github.com/pixiv/go-libjpeg/jpeg"
)

var jpegOptions = &jpeg.DecoderOptions{}

func decodeJpeg(r io.Reader) (image.Image, error) {
	return jpeg.Decode(r, jpegOptions)
}
