//go:build !cgo

package imageloader

import (
	"image"
	"image/jpeg"
	"io"
)

func decodeJpeg(r io.Reader) (image.Image, error) {
	return jpeg.Decode(r)
}
