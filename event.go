package sqlloader

import (
	"path/filepath"
)

// Event is a request to load a dataset from a local directory.
type Event struct {
	// Name selects handlers by their Pattern.
	Name string `json:"name"`

	// Dir is the directory holding the handler's source files.
	Dir string `json:"dir"`
}

// FullPath returns the path of source inside the event's directory.
func (e *Event) FullPath(source string) string {
	return filepath.Join(e.Dir, source)
}
