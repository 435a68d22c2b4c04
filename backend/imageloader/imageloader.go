package imageloader

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"vincit.fi/image-metadata/api"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/common/logger"
	"vincit.fi/image-metadata/common/pngtext"
)

var ErrNoValidFrames = errors.New("no valid frames decoded")

type ImageLoader struct {
	inputs  api.InputResolver
	decoder FrameDecoder
	sender  api.Sender

	api.ImageLoader
}

func NewImageLoader(inputs api.InputResolver, sender api.Sender) *ImageLoader {
	return NewImageLoaderWithDecoder(inputs, NewFrameDecoder(), sender)
}

func NewImageLoaderWithDecoder(inputs api.InputResolver, decoder FrameDecoder, sender api.Sender) *ImageLoader {
	logger.Debug.Printf("Initializing image loader...")
	if sender == nil {
		sender = api.NoopSender{}
	}
	return &ImageLoader{
		inputs:  inputs,
		decoder: decoder,
		sender:  sender,
	}
}

func (s *ImageLoader) ListInputFiles() ([]string, error) {
	return s.inputs.ListInputFiles()
}

// LoadImageWithMetadata loads every frame of the named image as a
// [frames, height, width, 3] tensor together with the metadata stored in the
// file. Frames with a different size than the first one are skipped.
func (s *ImageLoader) LoadImageWithMetadata(name string) (*apitype.Tensor, apitype.Metadata, error) {
	path, err := s.inputs.AnnotatedFilePath(name)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug.Printf("Loading image '%s'", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	metadata, exifData, err := readMetadata(data)
	if err != nil {
		return nil, nil, fmt.Errorf("reading metadata of '%s': %w", path, err)
	}

	frames, format, err := s.decoder.DecodeFrames(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding '%s': %w", path, err)
	}

	if exifData == nil && (format == formatJpeg || format == formatTiff) {
		exifData = data
	}
	orientation := apitype.OrientationUnchanged
	if exifData != nil {
		if orientation, err = apitype.DecodeOrientation(exifData); err != nil {
			logger.Trace.Printf("No orientation in '%s': %s", path, err)
		}
	}

	tensor, err := framesToTensor(frames, orientation)
	if err != nil {
		return nil, nil, fmt.Errorf("loading '%s': %w", path, err)
	}

	logger.Info.Printf("Loaded '%s' %s frames=%d metadata keys=%d", path, format, tensor.Batch(), len(metadata))
	s.sender.SendCommandToTopic(api.ImageLoaded, &apitype.ImageLoadedCommand{
		Name:   name,
		Path:   path,
		Shape:  tensor.Shape(),
		Frames: len(frames),
	})
	return tensor, metadata, nil
}

// LoadExifTags returns the EXIF tags of the named image. Images without
// readable EXIF data give an empty map.
func (s *ImageLoader) LoadExifTags(name string) (map[string]string, error) {
	path, err := s.inputs.AnnotatedFilePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	exifData := data
	if pngtext.IsPNG(data) {
		if _, exifData, err = readMetadata(data); err != nil {
			return nil, err
		}
		if exifData == nil {
			return map[string]string{}, nil
		}
	}

	tags, err := apitype.DecodeExifTags(exifData)
	if err != nil {
		logger.Debug.Printf("No EXIF data in '%s': %s", path, err)
		return map[string]string{}, nil
	}
	return tags, nil
}

// readMetadata returns the text metadata and the raw EXIF block of a PNG.
// Other formats carry no text metadata.
func readMetadata(data []byte) (apitype.Metadata, []byte, error) {
	if !pngtext.IsPNG(data) {
		return apitype.NewMetadata(), nil, nil
	}
	info, err := pngtext.ReadInfo(data)
	if err != nil {
		return nil, nil, err
	}
	return apitype.MetadataFromText(info.Text), info.Exif, nil
}

func framesToTensor(frames []image.Image, orientation apitype.Orientation) (*apitype.Tensor, error) {
	var size apitype.Size
	tensors := make([]*apitype.Tensor, 0, len(frames))
	for i, frame := range frames {
		oriented := apitype.ApplyOrientation(normalizeFrame(frame), orientation)
		frameSize := apitype.SizeFromRectangle(oriented.Bounds())
		if len(tensors) == 0 {
			size = frameSize
		} else if !frameSize.Equals(size) {
			logger.Debug.Printf("Skipping frame %d: size %s differs from %s", i, frameSize, size)
			continue
		}
		tensors = append(tensors, apitype.TensorFromImage(oriented))
	}

	switch len(tensors) {
	case 0:
		return nil, ErrNoValidFrames
	case 1:
		return tensors[0], nil
	default:
		return apitype.StackTensors(tensors...)
	}
}

func normalizeFrame(frame image.Image) image.Image {
	if gray16, ok := frame.(*image.Gray16); ok {
		return rescaleHighRange(gray16)
	}
	return frame
}

// rescaleHighRange maps 16-bit single channel values to the 8-bit range.
func rescaleHighRange(img *image.Gray16) *image.Gray {
	bounds := img.Bounds()
	rescaled := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			value := uint32(img.Gray16At(x, y).Y)
			rescaled.SetGray(x, y, color.Gray{Y: uint8((value*255 + 32767) / 65535)})
		}
	}
	return rescaled
}
