package database

import (
	"path/filepath"
	"time"

	"github.com/upper/db/v4"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/common/logger"
)

const (
	savedImageTable         = "saved_image"
	savedImageMetaDataTable = "saved_image_meta_data"
)

// SavedImageStore keeps a history of the images written by the saver.
type SavedImageStore struct {
	database *Database
	now      func() time.Time
}

func NewSavedImageStore(database *Database) *SavedImageStore {
	return &SavedImageStore{
		database: database,
		now:      time.Now,
	}
}

// AddSavedImages records results written under outputDir with the metadata
// text they were saved with.
func (s *SavedImageStore) AddSavedImages(outputDir string, results []*apitype.SavedImage, metadata apitype.Metadata) error {
	savedTime := s.now()
	return s.database.Session().Tx(func(session db.Session) error {
		for _, result := range results {
			row := &SavedImage{
				FileName:  result.Filename,
				Subfolder: result.Subfolder,
				Type:      result.Type,
				Path:      filepath.Join(outputDir, result.Subfolder, result.Filename),
				SavedTime: savedTime,
			}
			insertResult, err := session.Collection(savedImageTable).Insert(row)
			if err != nil {
				logger.Error.Printf("Could not store saved image '%s'", result.Filename)
				return err
			}
			id, ok := insertResult.ID().(int64)
			if !ok {
				var stored SavedImage
				if err := session.Collection(savedImageTable).Find(db.Cond{"path": row.Path}).OrderBy("-id").One(&stored); err != nil {
					return err
				}
				id = stored.Id
			}

			for _, key := range metadata.Keys() {
				value, err := metadata.TextValue(key)
				if err != nil {
					return err
				}
				if _, err := session.Collection(savedImageMetaDataTable).Insert(&SavedImageMetaData{
					SavedImageId: id,
					Key:          key,
					Value:        value,
				}); err != nil {
					return err
				}
			}
			logger.Trace.Printf("Stored saved image %d '%s'", id, row.Path)
		}
		return nil
	})
}

// GetSavedImages returns the history, newest first. limit <= 0 returns all.
func (s *SavedImageStore) GetSavedImages(limit int) ([]*apitype.HistoryEntry, error) {
	var rows []SavedImage
	result := s.database.Session().Collection(savedImageTable).Find().OrderBy("-id")
	if limit > 0 {
		result = result.Limit(limit)
	}
	if err := result.All(&rows); err != nil {
		return nil, err
	}

	entries := make([]*apitype.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		var metaData []SavedImageMetaData
		if err := s.database.Session().Collection(savedImageMetaDataTable).
			Find(db.Cond{"saved_image_id": row.Id}).All(&metaData); err != nil {
			return nil, err
		}

		values := map[string]string{}
		for _, m := range metaData {
			values[m.Key] = m.Value
		}
		entries = append(entries, &apitype.HistoryEntry{
			Id:        row.Id,
			Image:     apitype.NewSavedImage(row.FileName, row.Subfolder, row.Type),
			Path:      row.Path,
			SavedTime: row.SavedTime,
			Metadata:  values,
		})
	}
	return entries, nil
}
