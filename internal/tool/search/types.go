package search

import "fmt"

// SearchFilesRequest is the input of search_files.
type SearchFilesRequest struct {
	Pattern  string `mapstructure:"pattern"`
	Path     string `mapstructure:"path"`
	FileGlob string `mapstructure:"file_glob"`
}

func (r SearchFilesRequest) String() string {
	return fmt.Sprintf("Searching for %q in %s", r.Pattern, r.Path)
}

// match is a single matching line.
type match struct {
	file string
	line int
	text string
}

func (m match) String() string {
	return fmt.Sprintf("%s:%d: %s", m.file, m.line, m.text)
}
