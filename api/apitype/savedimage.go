package apitype

const OutputType = "output"

// SavedImage describes a written file for the host UI.
type SavedImage struct {
	Filename  string `json:"filename" yaml:"filename"`
	Subfolder string `json:"subfolder" yaml:"subfolder"`
	Type      string `json:"type" yaml:"type"`
}

func NewSavedImage(filename string, subfolder string, fileType string) *SavedImage {
	return &SavedImage{
		Filename:  filename,
		Subfolder: subfolder,
		Type:      fileType,
	}
}

// SavePath is the result of resolving a filename prefix against an output
// folder with the host numbering convention.
type SavePath struct {
	fullOutputFolder string
	filename         string
	counter          int
	subfolder        string
	filenamePrefix   string
}

func NewSavePath(fullOutputFolder string, filename string, counter int, subfolder string, filenamePrefix string) *SavePath {
	return &SavePath{
		fullOutputFolder: fullOutputFolder,
		filename:         filename,
		counter:          counter,
		subfolder:        subfolder,
		filenamePrefix:   filenamePrefix,
	}
}

func (s *SavePath) FullOutputFolder() string {
	return s.fullOutputFolder
}

func (s *SavePath) Filename() string {
	return s.filename
}

func (s *SavePath) Counter() int {
	return s.counter
}

func (s *SavePath) Subfolder() string {
	return s.subfolder
}

func (s *SavePath) FilenamePrefix() string {
	return s.filenamePrefix
}
