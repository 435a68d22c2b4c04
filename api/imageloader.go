package api

import "vincit.fi/image-metadata/api/apitype"

type ImageLoader interface {
	ListInputFiles() ([]string, error)
	LoadImageWithMetadata(name string) (*apitype.Tensor, apitype.Metadata, error)
	LoadExifTags(name string) (map[string]string, error)
}
