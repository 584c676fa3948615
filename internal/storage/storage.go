package storage

import "specview/internal/domain"

// Storage exports the final report of a session
type Storage interface {
	Save(snap domain.Snapshot, platform string) error
}

// JSONStorage writes the report as indented JSON to a fixed path
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that writes to path
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}
