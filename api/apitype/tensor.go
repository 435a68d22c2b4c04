package apitype

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

var (
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	ErrShapeMismatch       = errors.New("tensor shapes do not match")
)

// Tensor holds a batch of images as [batch, height, width, channel] float32
// values, channel values normalised to [0,1].
type Tensor struct {
	batch    int
	height   int
	width    int
	channels int
	data     []float32
}

func NewTensor(batch int, height int, width int, channels int) *Tensor {
	return &Tensor{
		batch:    batch,
		height:   height,
		width:    width,
		channels: channels,
		data:     make([]float32, batch*height*width*channels),
	}
}

// NewTensorFromData wraps data without copying it.
func NewTensorFromData(batch int, height int, width int, channels int, data []float32) (*Tensor, error) {
	if len(data) != batch*height*width*channels {
		return nil, fmt.Errorf("%w: %d values for shape [%d %d %d %d]",
			ErrShapeMismatch, len(data), batch, height, width, channels)
	}
	return &Tensor{batch: batch, height: height, width: width, channels: channels, data: data}, nil
}

// TensorFromImage converts an image into a single entry 3 channel tensor.
// Alpha is dropped, colour values are taken non-premultiplied.
func TensorFromImage(img *image.NRGBA) *Tensor {
	bounds := img.Bounds()
	tensor := NewTensor(1, bounds.Dy(), bounds.Dx(), 3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			offset := img.PixOffset(x, y)
			pixel := img.Pix[offset : offset+3 : offset+3]
			tensor.data[i] = float32(pixel[0]) / 255.0
			tensor.data[i+1] = float32(pixel[1]) / 255.0
			tensor.data[i+2] = float32(pixel[2]) / 255.0
			i += 3
		}
	}
	return tensor
}

// StackTensors concatenates tensors along the batch dimension.
func StackTensors(tensors ...*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, errors.New("nothing to stack")
	}
	first := tensors[0]
	batch := 0
	for _, tensor := range tensors {
		if tensor.height != first.height || tensor.width != first.width || tensor.channels != first.channels {
			return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, first.Shape(), tensor.Shape())
		}
		batch += tensor.batch
	}

	stacked := NewTensor(batch, first.height, first.width, first.channels)
	offset := 0
	for _, tensor := range tensors {
		offset += copy(stacked.data[offset:], tensor.data)
	}
	return stacked, nil
}

func (s *Tensor) Shape() [4]int {
	return [4]int{s.batch, s.height, s.width, s.channels}
}

func (s *Tensor) Batch() int {
	return s.batch
}

func (s *Tensor) Height() int {
	return s.height
}

func (s *Tensor) Width() int {
	return s.width
}

func (s *Tensor) Channels() int {
	return s.channels
}

func (s *Tensor) Size() Size {
	return SizeOf(s.width, s.height)
}

func (s *Tensor) Data() []float32 {
	return s.data
}

func (s *Tensor) index(b int, y int, x int, c int) int {
	return ((b*s.height+y)*s.width+x)*s.channels + c
}

func (s *Tensor) At(b int, y int, x int, c int) float32 {
	return s.data[s.index(b, y, x, c)]
}

func (s *Tensor) Set(b int, y int, x int, c int, value float32) {
	s.data[s.index(b, y, x, c)] = value
}

// Item returns entry b as a single entry tensor sharing the same data.
func (s *Tensor) Item(b int) *Tensor {
	itemLength := s.height * s.width * s.channels
	return &Tensor{
		batch:    1,
		height:   s.height,
		width:    s.width,
		channels: s.channels,
		data:     s.data[b*itemLength : (b+1)*itemLength : (b+1)*itemLength],
	}
}

// ToImage converts entry b to 8-bit pixel data. Values are scaled by 255,
// clipped to [0,255] and truncated.
func (s *Tensor) ToImage(b int) (image.Image, error) {
	if b < 0 || b >= s.batch {
		return nil, fmt.Errorf("batch index %d out of range [0,%d)", b, s.batch)
	}
	rect := image.Rect(0, 0, s.width, s.height)
	item := s.Item(b).data

	switch s.channels {
	case 1:
		img := image.NewGray(rect)
		for y := 0; y < s.height; y++ {
			for x := 0; x < s.width; x++ {
				img.SetGray(x, y, color.Gray{Y: toByte(item[y*s.width+x])})
			}
		}
		return img, nil
	case 3, 4:
		img := image.NewNRGBA(rect)
		for y := 0; y < s.height; y++ {
			for x := 0; x < s.width; x++ {
				src := (y*s.width + x) * s.channels
				dst := img.PixOffset(x, y)
				img.Pix[dst] = toByte(item[src])
				img.Pix[dst+1] = toByte(item[src+1])
				img.Pix[dst+2] = toByte(item[src+2])
				if s.channels == 4 {
					img.Pix[dst+3] = toByte(item[src+3])
				} else {
					img.Pix[dst+3] = math.MaxUint8
				}
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, s.channels)
}

func toByte(value float32) uint8 {
	scaled := float64(value) * 255.0
	if math.IsNaN(scaled) || scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return math.MaxUint8
	}
	return uint8(scaled)
}
