package apitype

import (
	"fmt"
	"image"
)

type Size struct {
	width  int
	height int
}

func SizeOf(width int, height int) Size {
	return Size{width, height}
}

func SizeFromRectangle(rectangle image.Rectangle) Size {
	return Size{
		width:  rectangle.Dx(),
		height: rectangle.Dy(),
	}
}

func (s Size) Width() int {
	return s.width
}

func (s Size) Height() int {
	return s.height
}

func (s Size) Equals(other Size) bool {
	return s.width == other.width && s.height == other.height
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.width, s.height)
}
