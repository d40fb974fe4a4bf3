// Package target merges inline node and AUID values with those listed in
// files.
package target

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/user/debugpanel/internal/entity"
)

// CommentMarker starts a comment that runs to the end of the line.
const CommentMarker = "#"

// Resolve returns the explicit values, in order, followed by the lines of
// each file in turn. When required is set an empty result is a
// ConfigurationError naming what.
func Resolve(what string, explicit []string, files []string, required bool) ([]string, error) {
	values := append([]string(nil), explicit...)
	for _, path := range files {
		lines, err := FileLines(path)
		if err != nil {
			return nil, err
		}
		values = append(values, lines...)
	}
	if required && len(values) == 0 {
		return nil, entity.Configurationf("the list of %s to process is empty", what)
	}
	return values, nil
}

// FileLines reads the meaningful lines of a list file. A file with none is
// an EmptyListFileError.
func FileLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, entity.Configurationf("cannot read list file: %v", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, entity.Configurationf("cannot read list file %s: %v", path, err)
	}
	if len(lines) == 0 {
		return nil, &entity.EmptyListFileError{Path: path}
	}
	return lines, nil
}

// ReadLines strips comments and surrounding space from each line of r and
// drops the lines left empty.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, CommentMarker); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
