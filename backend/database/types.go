package database

import "time"

type MigrationId int64

type TableExist bool

const (
	TableExists   TableExist = true
	TableNotExist TableExist = false
)

type Migration struct {
	Id MigrationId `db:"id"`
}

type SavedImage struct {
	Id        int64     `db:"id,omitempty"`
	FileName  string    `db:"file_name"`
	Subfolder string    `db:"subfolder"`
	Type      string    `db:"type"`
	Path      string    `db:"path"`
	SavedTime time.Time `db:"saved_timestamp"`
}

type SavedImageMetaData struct {
	SavedImageId int64  `db:"saved_image_id"`
	Key          string `db:"key"`
	Value        string `db:"value"`
}
