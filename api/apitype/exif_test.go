package apitype

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Minimal big endian TIFF header with a single IFD0 orientation entry.
func orientationExif(orientation byte) []byte {
	return []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
}

func TestDecodeOrientation(t *testing.T) {
	a := assert.New(t)

	t.Run("Rotated", func(t *testing.T) {
		orientation, err := DecodeOrientation(orientationExif(6))
		a.Nil(err)
		a.Equal(Orientation(6), orientation)
		a.True(orientation.SwapsDimensions())
	})
	t.Run("Invalid value is unchanged", func(t *testing.T) {
		orientation, err := DecodeOrientation(orientationExif(42))
		a.Nil(err)
		a.Equal(OrientationUnchanged, orientation)
	})
	t.Run("Not exif", func(t *testing.T) {
		orientation, err := DecodeOrientation([]byte("not exif data"))
		a.NotNil(err)
		a.Equal(OrientationUnchanged, orientation)
	})
}

func TestApplyOrientation(t *testing.T) {
	a := assert.New(t)

	// 2x1 image: red on the left, blue on the right
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, blue)

	t.Run("Unchanged", func(t *testing.T) {
		result := ApplyOrientation(img, OrientationUnchanged)
		a.Equal(SizeOf(2, 1), SizeFromRectangle(result.Bounds()))
		a.Equal(red, result.NRGBAAt(0, 0))
	})
	t.Run("Flip horizontal", func(t *testing.T) {
		result := ApplyOrientation(img, Orientation(2))
		a.Equal(blue, result.NRGBAAt(0, 0))
	})
	t.Run("Rotate 90 clockwise", func(t *testing.T) {
		result := ApplyOrientation(img, Orientation(6))
		a.Equal(SizeOf(1, 2), SizeFromRectangle(result.Bounds()))
		a.Equal(red, result.NRGBAAt(0, 0))
		a.Equal(blue, result.NRGBAAt(0, 1))
	})
	t.Run("Rotate 90 counter-clockwise", func(t *testing.T) {
		result := ApplyOrientation(img, Orientation(8))
		a.Equal(SizeOf(1, 2), SizeFromRectangle(result.Bounds()))
		a.Equal(blue, result.NRGBAAt(0, 0))
		a.Equal(red, result.NRGBAAt(0, 1))
	})
}

func TestDecodeExifTags(t *testing.T) {
	a := assert.New(t)

	tags, err := DecodeExifTags(orientationExif(6))
	a.Nil(err)
	a.Equal(map[string]string{"Orientation": "6"}, tags)

	_, err = DecodeExifTags([]byte("not exif data"))
	a.NotNil(err)
}
