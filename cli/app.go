package cli

import (
	"vincit.fi/image-metadata/api"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/backend/database"
	"vincit.fi/image-metadata/backend/folderpaths"
	"vincit.fi/image-metadata/backend/imageloader"
	"vincit.fi/image-metadata/backend/imagesaver"
	"vincit.fi/image-metadata/common/event"
	"vincit.fi/image-metadata/common/logger"
	"vincit.fi/image-metadata/config"
)

const eventQueueSize = 16

type app struct {
	config *config.Config
	paths  *folderpaths.FolderPaths
	broker *event.Broker
	loader *imageloader.ImageLoader
	saver  *imagesaver.ImageSaver
}

func newApp(cfg *config.Config) (*app, error) {
	broker := event.InitBus(eventQueueSize)
	if err := broker.Subscribe(api.ImageLoaded, onImageLoaded); err != nil {
		return nil, err
	}
	if err := broker.Subscribe(api.ImageSaved, onImageSaved); err != nil {
		return nil, err
	}

	paths := folderpaths.NewFolderPaths(cfg.InputDir, cfg.OutputDir, cfg.TempDir)
	saver := imagesaver.NewImageSaver(paths.OutputDirectory(), paths, broker)
	saver.SetCompressLevel(cfg.CompressLevel)

	return &app{
		config: cfg,
		paths:  paths,
		broker: broker,
		loader: imageloader.NewImageLoader(paths, broker),
		saver:  saver,
	}, nil
}

// openHistory returns nil when no history database is configured.
func (s *app) openHistory() (*database.Database, *database.SavedImageStore, error) {
	if s.config.HistoryDb == "" {
		return nil, nil, nil
	}
	db, err := database.OpenDatabase(s.config.HistoryDb)
	if err != nil {
		return nil, nil, err
	}
	return db, database.NewSavedImageStore(db), nil
}

func (s *app) close() {
	s.broker.Wait()
}

func onImageLoaded(command apitype.Command) {
	if loaded, ok := command.(*apitype.ImageLoadedCommand); ok {
		logger.Debug.Printf("Image '%s' loaded with shape %v", loaded.Name, loaded.Shape)
	}
}

func onImageSaved(command apitype.Command) {
	if saved, ok := command.(*apitype.ImageSavedCommand); ok {
		logger.Info.Printf("Saved %d/%d '%s'", saved.Current, saved.Total, saved.Path)
	}
}
