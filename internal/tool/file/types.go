package file

import "fmt"

// ReadFileRequest is the input of read_file.
type ReadFileRequest struct {
	Path string `mapstructure:"path"`
}

func (r ReadFileRequest) String() string {
	return fmt.Sprintf("Reading %s", r.Path)
}

// WriteFileRequest is the input of write_file.
type WriteFileRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

func (r WriteFileRequest) String() string {
	return fmt.Sprintf("Writing %s (%d bytes)", r.Path, len(r.Content))
}

// EditFileRequest is the input of edit_file.
type EditFileRequest struct {
	Path    string `mapstructure:"path"`
	Find    string `mapstructure:"find"`
	Replace string `mapstructure:"replace"`
}

func (r EditFileRequest) String() string {
	return fmt.Sprintf("Editing %s", r.Path)
}

// DeleteFileRequest is the input of delete_file.
type DeleteFileRequest struct {
	Path string `mapstructure:"path"`
}

func (r DeleteFileRequest) String() string {
	return fmt.Sprintf("Deleting %s", r.Path)
}
