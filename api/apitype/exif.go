package apitype

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Orientation is the EXIF orientation flag, 1 (unchanged) to 8.
type Orientation int

const (
	OrientationUnchanged Orientation = 1

	orientationFlipH      Orientation = 2
	orientationRotate180  Orientation = 3
	orientationFlipV      Orientation = 4
	orientationTranspose  Orientation = 5
	orientationRotate270  Orientation = 6
	orientationTransverse Orientation = 7
	orientationRotate90   Orientation = 8
)

func (s Orientation) IsValid() bool {
	return s >= OrientationUnchanged && s <= orientationRotate90
}

// SwapsDimensions tells if applying the orientation swaps width and height.
func (s Orientation) SwapsDimensions() bool {
	return s >= orientationTranspose && s <= orientationRotate90
}

// ApplyOrientation returns img transformed so that it displays upright.
// imaging rotates counter-clockwise.
func ApplyOrientation(img image.Image, orientation Orientation) *image.NRGBA {
	switch orientation {
	case orientationFlipH:
		return imaging.FlipH(img)
	case orientationRotate180:
		return imaging.Rotate180(img)
	case orientationFlipV:
		return imaging.FlipV(img)
	case orientationTranspose:
		return imaging.Transpose(img)
	case orientationRotate270:
		return imaging.Rotate270(img)
	case orientationTransverse:
		return imaging.Transverse(img)
	case orientationRotate90:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}

func GetInt(decodedExif *exif.Exif, tagName exif.FieldName) (int, error) {
	if tag, err := decodedExif.Get(tagName); err != nil {
		return 0, err
	} else {
		return tag.Int(0)
	}
}

// DecodeOrientation reads the orientation flag from a JPEG, TIFF or raw EXIF
// block. Anything unreadable counts as unchanged.
func DecodeOrientation(data []byte) (Orientation, error) {
	decodedExif, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return OrientationUnchanged, err
	}
	value, err := GetInt(decodedExif, exif.Orientation)
	if err != nil {
		return OrientationUnchanged, err
	}
	if orientation := Orientation(value); orientation.IsValid() {
		return orientation, nil
	}
	return OrientationUnchanged, nil
}

type exifTagWalker struct {
	values map[string]string

	exif.Walker
}

func (s *exifTagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tagValue := strings.Trim(tag.String(), " \t\""); tagValue != "" {
		s.values[string(name)] = tagValue
	}
	return nil
}

// DecodeExifTags returns the non-empty EXIF tags of a JPEG, TIFF or raw EXIF
// block by field name.
func DecodeExifTags(data []byte) (map[string]string, error) {
	decodedExif, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	walker := &exifTagWalker{values: map[string]string{}}
	if err := decodedExif.Walk(walker); err != nil {
		return nil, err
	}
	return walker.values, nil
}
