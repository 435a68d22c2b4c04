package database

type migration struct {
	id          MigrationId
	description string
	query       string
}

var migrations = []migration{
	{
		id:          0,
		description: "Initial Tables",
		query: `
			CREATE TABLE saved_image (
			    id INTEGER PRIMARY KEY,
			    file_name TEXT,
			    subfolder TEXT,
			    type TEXT,
			    path TEXT,
			    saved_timestamp DATETIME
			);

			CREATE INDEX saved_image_saved_timestamp_idx ON saved_image (saved_timestamp);

			CREATE TABLE saved_image_meta_data (
			    saved_image_id INTEGER,
			    key TEXT,
			    value TEXT,

			    FOREIGN KEY(saved_image_id) REFERENCES saved_image(id) ON DELETE CASCADE,
			    UNIQUE (saved_image_id, key)
			);
		`,
	},
}
