package apitype

import "time"

// HistoryEntry is a saved image recorded in the save history.
type HistoryEntry struct {
	Id        int64             `json:"id" yaml:"id"`
	Image     *SavedImage       `json:"image" yaml:"image"`
	Path      string            `json:"path" yaml:"path"`
	SavedTime time.Time         `json:"saved_time" yaml:"saved_time"`
	Metadata  map[string]string `json:"metadata" yaml:"metadata"`
}
