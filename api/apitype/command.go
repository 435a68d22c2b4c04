package apitype

type Command interface{}

type ImageLoadedCommand struct {
	Name   string
	Path   string
	Shape  [4]int
	Frames int
}

type ImageSavedCommand struct {
	Image   *SavedImage
	Path    string
	Current int
	Total   int
}
