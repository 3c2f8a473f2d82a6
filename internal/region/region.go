// Package region rewrites the lines between two marker lines of a text file.
package region

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrMarkerNotFound matches every marker failure below.
	ErrMarkerNotFound      = errors.New("marker not found")
	ErrBeginMarkerNotFound = fmt.Errorf("begin %w", ErrMarkerNotFound)
	ErrEndMarkerNotFound   = fmt.Errorf("end %w", ErrMarkerNotFound)
	ErrMarkersMisordered   = fmt.Errorf("end marker precedes begin marker: %w", ErrMarkerNotFound)
)

// MarkerError reports which pattern could not be located.
type MarkerError struct {
	Path    string
	Pattern string
	Err     error
}

func (e *MarkerError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v (pattern %q)", e.Err, e.Pattern)
	}
	return fmt.Sprintf("%s: %v (pattern %q)", e.Path, e.Err, e.Pattern)
}

func (e *MarkerError) Unwrap() error {
	return e.Err
}

// Document is the full contents of a file as lines. Each line keeps its
// original terminator so untouched lines are written back byte for byte.
type Document struct {
	lines []string
}

// ParseDocument splits data into lines.
func ParseDocument(data []byte) *Document {
	content := string(data)
	if content == "" {
		return &Document{}
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &Document{lines: lines}
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Line returns line i without its terminator.
func (d *Document) Line(i int) string {
	return trimEOL(d.lines[i])
}

// Bytes reassembles the document.
func (d *Document) Bytes() []byte {
	return []byte(strings.Join(d.lines, ""))
}

// ReplaceRegion replaces every line strictly between the first line matching
// begin and the first later line matching end. A nil end extends the region to
// the end of the document. Replacement lines must not carry terminators.
func (d *Document) ReplaceRegion(begin, end *regexp.Regexp, replacement []string) error {
	beginIdx := -1
	endBeforeBegin := false
	for i := range d.lines {
		line := trimEOL(d.lines[i])
		if begin.MatchString(line) {
			beginIdx = i
			break
		}
		if end != nil && end.MatchString(line) {
			endBeforeBegin = true
		}
	}
	if beginIdx < 0 {
		return &MarkerError{Pattern: begin.String(), Err: ErrBeginMarkerNotFound}
	}

	endIdx := len(d.lines)
	if end != nil {
		endIdx = -1
		for i := beginIdx + 1; i < len(d.lines); i++ {
			if end.MatchString(trimEOL(d.lines[i])) {
				endIdx = i
				break
			}
		}
		if endIdx < 0 {
			if endBeforeBegin {
				return &MarkerError{Pattern: end.String(), Err: ErrMarkersMisordered}
			}
			return &MarkerError{Pattern: end.String(), Err: ErrEndMarkerNotFound}
		}
	}

	eol := lineEnding(d.lines[beginIdx])
	// The begin marker may be the last line of a file without a trailing newline.
	head := append([]string{}, d.lines[:beginIdx+1]...)
	if !strings.HasSuffix(head[beginIdx], "\n") && (len(replacement) > 0 || endIdx < len(d.lines)) {
		head[beginIdx] += eol
	}

	body := make([]string, 0, len(replacement))
	for _, line := range replacement {
		body = append(body, trimEOL(line)+eol)
	}

	out := make([]string, 0, len(head)+len(body)+len(d.lines)-endIdx)
	out = append(out, head...)
	out = append(out, body...)
	out = append(out, d.lines[endIdx:]...)
	d.lines = out
	return nil
}

// ReplaceFile applies ReplaceRegion to the file at path and rewrites it. An
// empty endPattern extends the region to the end of the file. The file is
// untouched when either marker is missing.
func ReplaceFile(path, beginPattern, endPattern string, replacement []string) error {
	begin, err := regexp.Compile(beginPattern)
	if err != nil {
		return fmt.Errorf("invalid begin pattern %q: %w", beginPattern, err)
	}
	var end *regexp.Regexp
	if endPattern != "" {
		end, err = regexp.Compile(endPattern)
		if err != nil {
			return fmt.Errorf("invalid end pattern %q: %w", endPattern, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := ParseDocument(data)
	if err := doc.ReplaceRegion(begin, end, replacement); err != nil {
		var me *MarkerError
		if errors.As(err, &me) {
			me.Path = path
		}
		return err
	}
	return WriteFile(path, doc.Bytes())
}

// WriteFile replaces path with data through a temporary sibling file so a
// failed write never leaves a truncated target behind.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
