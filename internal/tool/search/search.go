package search

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/content"
)

const (
	// initialScanBuffer is the starting scanner buffer size.
	initialScanBuffer = 64 * 1024
	// maxScanToken bounds a single line; longer lines end the scan of that file.
	maxScanToken = 10 * 1024 * 1024
)

var errResultCap = errors.New("result cap reached")

// SearchFilesTool searches file contents in the workspace.
type SearchFilesTool struct {
	guard  pathGuard
	fs     fileSystem
	ignore ignoreMatcher
	config *config.Config
}

// NewSearchFilesTool creates a new SearchFilesTool with injected dependencies.
func NewSearchFilesTool(guard pathGuard, fs fileSystem, ignore ignoreMatcher, cfg *config.Config) *SearchFilesTool {
	if guard == nil {
		panic("guard is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if ignore == nil {
		panic("ignore matcher is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &SearchFilesTool{guard: guard, fs: fs, ignore: ignore, config: cfg}
}

func (t *SearchFilesTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "search_files",
		Description: "Search file contents with a case-insensitive regular expression. " +
			"Returns matching lines as path:line: text.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern":   {Type: tool.TypeString, Description: "Regular expression to search for"},
				"path":      {Type: tool.TypeString, Description: "File or directory to search (default: workspace root)"},
				"file_glob": {Type: tool.TypeString, Description: "Only search files whose name matches this glob, e.g. *.go"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *SearchFilesTool) Handler() tool.Handler {
	return tool.HandlerFunc[SearchFilesRequest](t.Run)
}

// Run walks the search path and collects matching lines in path order.
// Hidden directories, gitignored paths, symlinks and binary files are skipped.
// An invalid regular expression is searched for literally.
func (t *SearchFilesTool) Run(ctx context.Context, req SearchFilesRequest) (string, error) {
	if req.Pattern == "" {
		return "", &tool.ValidationError{Field: "pattern", Reason: "must not be empty"}
	}
	if req.Path == "" {
		req.Path = "."
	}
	if req.FileGlob != "" {
		if _, err := filepath.Match(req.FileGlob, ""); err != nil {
			return "", &InvalidGlobError{Glob: req.FileGlob, Cause: err}
		}
	}

	re := compilePattern(req.Pattern)

	abs, err := t.guard.AuthorizePath(req.Path)
	if err != nil {
		return "", err
	}
	if _, err := t.fs.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: req.Path}
		}
		return "", fmt.Errorf("failed to stat %s: %w", req.Path, err)
	}

	maxResults := t.config.Tools.MaxSearchResults
	var matches []match

	walkErr := t.fs.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel := t.guard.Rel(path)
		if d.IsDir() {
			if path == abs {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || t.ignore.ShouldIgnore(rel, true) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if path != abs && t.ignore.ShouldIgnore(rel, false) {
			return nil
		}
		if req.FileGlob != "" {
			if ok, _ := filepath.Match(req.FileGlob, d.Name()); !ok {
				return nil
			}
		}

		var stop bool
		matches, stop = t.searchFile(path, rel, re, matches, maxResults)
		if stop {
			return errResultCap
		}
		return nil
	})

	capped := errors.Is(walkErr, errResultCap)
	if walkErr != nil && !capped {
		return "", walkErr
	}

	if len(matches) == 0 {
		return "No matches found.", nil
	}

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(m.String())
		sb.WriteByte('\n')
	}
	if capped {
		fmt.Fprintf(&sb, "... (truncated at %d matches)\n", maxResults)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// searchFile appends matches from one file. It reports true once maxResults is reached.
func (t *SearchFilesTool) searchFile(path, rel string, re *regexp.Regexp, matches []match, maxResults int) ([]match, bool) {
	f, err := t.fs.Open(path)
	if err != nil {
		return matches, false
	}
	defer f.Close()

	head := make([]byte, content.SampleSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return matches, false
	}
	if content.IsBinary(head[:n]) {
		return matches, false
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return matches, false
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, initialScanBuffer), maxScanToken)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if !re.MatchString(line) {
			continue
		}
		matches = append(matches, match{
			file: filepath.ToSlash(rel),
			line: lineNo,
			text: content.TruncateLine(strings.TrimSpace(line), t.config.Tools.MaxLineLength),
		})
		if len(matches) >= maxResults {
			return matches, true
		}
	}
	return matches, false
}

// compilePattern compiles a case-insensitive regex, falling back to a literal match.
func compilePattern(pattern string) *regexp.Regexp {
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
}
