package folderpaths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vincit.fi/image-metadata/api"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/common/logger"
	"vincit.fi/image-metadata/common/template"
	"vincit.fi/image-metadata/common/util"
)

var (
	ErrOutsideFolder = errors.New("path is outside of the allowed folder")
	ErrEmptyName     = errors.New("empty image name")
)

const (
	annotationInput  = "[input]"
	annotationOutput = "[output]"
	annotationTemp   = "[temp]"
)

// FolderPaths resolves host input, output and temp directories.
type FolderPaths struct {
	inputDir  string
	outputDir string
	tempDir   string
	now       func() time.Time

	api.InputResolver
	api.SavePathResolver
}

func NewFolderPaths(inputDir string, outputDir string, tempDir string) *FolderPaths {
	return &FolderPaths{
		inputDir:  inputDir,
		outputDir: outputDir,
		tempDir:   tempDir,
		now:       time.Now,
	}
}

func (s *FolderPaths) InputDirectory() string {
	return s.inputDir
}

func (s *FolderPaths) OutputDirectory() string {
	return s.outputDir
}

func (s *FolderPaths) TempDirectory() string {
	return s.tempDir
}

func (s *FolderPaths) ListInputFiles() ([]string, error) {
	logger.Debug.Printf("Scanning input directory '%s'", s.inputDir)
	return util.ListRegularFiles(s.inputDir)
}

// AnnotatedFilePath resolves names like "image.png [output]" against the
// annotated directory. Names without an annotation are input files.
func (s *FolderPaths) AnnotatedFilePath(name string) (string, error) {
	baseDir := s.inputDir
	trimmed := strings.TrimSpace(name)
	switch {
	case strings.HasSuffix(trimmed, annotationOutput):
		baseDir = s.outputDir
		trimmed = strings.TrimSuffix(trimmed, annotationOutput)
	case strings.HasSuffix(trimmed, annotationInput):
		trimmed = strings.TrimSuffix(trimmed, annotationInput)
	case strings.HasSuffix(trimmed, annotationTemp):
		baseDir = s.tempDir
		trimmed = strings.TrimSuffix(trimmed, annotationTemp)
	}
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "", ErrEmptyName
	}

	path := filepath.Join(baseDir, trimmed)
	if err := checkInside(baseDir, path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveImagePath resolves the output folder, file name and next free counter
// for filenamePrefix. A prefix may name sub folders of outputDir.
func (s *FolderPaths) SaveImagePath(filenamePrefix string, outputDir string, imageWidth int, imageHeight int) (*apitype.SavePath, error) {
	if strings.Contains(filenamePrefix, "%") {
		filenamePrefix = template.Substitute(filenamePrefix, template.PathTokens, template.Vars{
			Now:    s.now(),
			Width:  imageWidth,
			Height: imageHeight,
		})
	}

	normalized := filepath.Clean(filenamePrefix)
	subfolder := filepath.Dir(normalized)
	if subfolder == "." {
		subfolder = ""
	}
	filename := filepath.Base(normalized)
	fullOutputFolder := filepath.Join(outputDir, subfolder)

	if err := checkInside(outputDir, fullOutputFolder); err != nil {
		logger.Error.Printf("Saving image outside the output folder is not allowed. full_output_folder: %s, output_dir: %s",
			fullOutputFolder, outputDir)
		return nil, err
	}

	counter, err := nextCounter(fullOutputFolder, filename, len(filepath.Base(filenamePrefix)))
	if err != nil {
		return nil, err
	}
	return apitype.NewSavePath(fullOutputFolder, filename, counter, subfolder, filenamePrefix), nil
}

func checkInside(baseDir string, path string) error {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	relative, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return err
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: '%s' is not inside '%s'", ErrOutsideFolder, path, baseDir)
	}
	return nil
}

// nextCounter returns one more than the largest counter of files named
// <filename>_<counter>_... in folder, or 1 when there are none.
func nextCounter(folder string, filename string, prefixLength int) (int, error) {
	entries, err := os.ReadDir(folder)
	if os.IsNotExist(err) {
		return 1, util.MakeDirectoriesIfNotExist(folder)
	} else if err != nil {
		return 0, err
	}

	found := false
	maxCounter := 0
	for _, entry := range entries {
		if counter, ok := counterOf(entry.Name(), filename, prefixLength); ok && (!found || counter > maxCounter) {
			found = true
			maxCounter = counter
		}
	}
	if !found {
		return 1, nil
	}
	return maxCounter + 1, nil
}

func counterOf(name string, filename string, prefixLength int) (int, bool) {
	if len(name) < prefixLength+1 {
		return 0, false
	}
	prefix := name[:prefixLength+1]
	if prefix[:prefixLength] != filename || prefix[prefixLength] != '_' {
		return 0, false
	}

	digits, err := strconv.Atoi(strings.SplitN(name[prefixLength+1:], "_", 2)[0])
	if err != nil {
		return 0, true
	}
	return digits, true
}
