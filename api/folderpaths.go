package api

import "vincit.fi/image-metadata/api/apitype"

// InputResolver maps image identifiers coming from the host to files.
type InputResolver interface {
	ListInputFiles() ([]string, error)
	AnnotatedFilePath(name string) (string, error)
}

// SavePathResolver applies the host's output numbering convention to a
// filename prefix within outputDir.
type SavePathResolver interface {
	SaveImagePath(filenamePrefix string, outputDir string, imageWidth int, imageHeight int) (*apitype.SavePath, error)
}
