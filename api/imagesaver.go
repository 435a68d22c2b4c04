package api

import "vincit.fi/image-metadata/api/apitype"

type ImageSaver interface {
	SaveImages(images *apitype.Tensor, metadata apitype.Metadata, filenamePrefix string, subdirectoryName string) ([]*apitype.SavedImage, error)
}
