package imagesaver

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"vincit.fi/image-metadata/api"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/common/logger"
	"vincit.fi/image-metadata/common/pngtext"
	"vincit.fi/image-metadata/common/template"
	"vincit.fi/image-metadata/common/util"
)

const (
	DefaultCompressLevel  = 4
	DefaultFilenamePrefix = "ComfyUI"
)

var ErrEmptyBatch = errors.New("no images to save")

type ImageSaver struct {
	outputDir     string
	paths         api.SavePathResolver
	sender        api.Sender
	fileType      string
	prefixAppend  string
	compressLevel int
	now           func() time.Time

	api.ImageSaver
}

func NewImageSaver(outputDir string, paths api.SavePathResolver, sender api.Sender) *ImageSaver {
	logger.Debug.Printf("Initializing image saver for '%s'", outputDir)
	if sender == nil {
		sender = api.NoopSender{}
	}
	return &ImageSaver{
		outputDir:     outputDir,
		paths:         paths,
		sender:        sender,
		fileType:      apitype.OutputType,
		compressLevel: DefaultCompressLevel,
		now:           time.Now,
	}
}

func (s *ImageSaver) SetCompressLevel(level int) {
	s.compressLevel = level
}

// SaveImages writes every entry of images as a PNG file with metadata stored
// as text chunks. Files written before a failure are left in place.
func (s *ImageSaver) SaveImages(images *apitype.Tensor, metadata apitype.Metadata, filenamePrefix string, subdirectoryName string) ([]*apitype.SavedImage, error) {
	if images == nil || images.Batch() == 0 {
		return nil, ErrEmptyBatch
	}
	if metadata == nil {
		metadata = apitype.NewMetadata()
	}

	vars := template.Vars{Now: s.now()}
	filenamePrefix = template.Substitute(filenamePrefix, template.PrefixTokens, vars) + s.prefixAppend
	subdirectoryName = template.Substitute(subdirectoryName, template.SubdirectoryTokens, vars)

	fullOutputFolder := s.outputDir
	if subdirectoryName != "" {
		fullOutputFolder = filepath.Join(s.outputDir, subdirectoryName)
	}
	if err := util.MakeDirectoriesIfNotExist(fullOutputFolder); err != nil {
		return nil, err
	}

	savePath, err := s.paths.SaveImagePath(filenamePrefix, fullOutputFolder, images.Width(), images.Height())
	if err != nil {
		return nil, err
	}

	entries, err := textEntries(metadata)
	if err != nil {
		return nil, err
	}

	subfolder := savePath.Subfolder()
	if subdirectoryName != "" {
		subfolder = filepath.Join(subfolder, subdirectoryName)
	}

	total := images.Batch()
	results := make([]*apitype.SavedImage, 0, total)
	counter := savePath.Counter()
	for batchNumber := 0; batchNumber < total; batchNumber++ {
		img, err := images.ToImage(batchNumber)
		if err != nil {
			return results, err
		}

		filename := template.Substitute(savePath.Filename(), template.BatchTokens, template.Vars{BatchNumber: batchNumber})
		file := fmt.Sprintf("%s_%05d_.png", filename, counter)
		path := filepath.Join(savePath.FullOutputFolder(), file)
		if err := s.writeImage(path, img, entries); err != nil {
			logger.Error.Printf("Could not save image '%s': %s", path, err)
			return results, err
		}

		result := apitype.NewSavedImage(file, subfolder, s.fileType)
		results = append(results, result)
		s.sender.SendCommandToTopic(api.ImageSaved, &apitype.ImageSavedCommand{
			Image:   result,
			Path:    path,
			Current: batchNumber + 1,
			Total:   total,
		})
		counter++
	}
	return results, nil
}

func textEntries(metadata apitype.Metadata) ([]pngtext.Entry, error) {
	entries := make([]pngtext.Entry, 0, len(metadata))
	for _, key := range metadata.Keys() {
		value, err := metadata.TextValue(key)
		if err != nil {
			return nil, fmt.Errorf("encoding metadata '%s': %w", key, err)
		}
		entries = append(entries, pngtext.Entry{Key: key, Value: value})
	}
	return entries, nil
}

func (s *ImageSaver) writeImage(path string, img image.Image, entries []pngtext.Entry) error {
	logger.Debug.Printf("Writing '%s' with %d metadata entries", path, len(entries))
	destination, err := os.Create(path)
	if err != nil {
		return err
	}
	defer destination.Close()

	writer := bufio.NewWriter(destination)
	if err := pngtext.Encode(writer, img, entries, s.compressLevel); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return destination.Close()
}
