package directory

import "fmt"

// ListDirectoryRequest is the input of list_directory.
type ListDirectoryRequest struct {
	Path      string `mapstructure:"path"`
	Recursive bool   `mapstructure:"recursive"`
}

func (r ListDirectoryRequest) String() string {
	if r.Recursive {
		return fmt.Sprintf("Listing %s recursively", r.Path)
	}
	return fmt.Sprintf("Listing %s", r.Path)
}

// entry is one listed path, relative to the listed directory.
type entry struct {
	path  string
	isDir bool
}

func (e entry) String() string {
	if e.isDir {
		return e.path + "/"
	}
	return e.path
}
