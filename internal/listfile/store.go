package listfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CompleteSentinel marks a list file as fully processed. A file containing it
// is never requeried until it is removed.
const CompleteSentinel = "complete"

// Store is the list file: a line-oriented FIFO of pending work items.
//
// Every removal reads the whole file and writes it back without the removed
// line. The rewrite goes through a temp file in the same directory followed by
// a rename, so a crash leaves either the old or the new content on disk.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Exists reports whether the backing file is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat list file: %w", err)
	}
	return true, nil
}

// IsComplete reports whether any line of the file is the completion sentinel.
func (s *Store) IsComplete() (bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return false, fmt.Errorf("open list file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimRight(sc.Text(), "\r") == CompleteSentinel {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("scan list file: %w", err)
	}
	return false, nil
}

// IsEmpty reports whether the file exists and has zero bytes.
func (s *Store) IsEmpty() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("stat list file: %w", err)
	}
	return info.Size() == 0, nil
}

// Create creates the file empty if it is absent. Existing content is kept.
func (s *Store) Create() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create list file: %w", err)
	}
	return f.Close()
}

// Append adds one line at the end of the file, creating it if needed.
func (s *Store) Append(line string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open list file for append: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to list file: %w", err)
	}
	return f.Close()
}

// MarkComplete appends the completion sentinel.
func (s *Store) MarkComplete() error {
	return s.Append(CompleteSentinel)
}

// Len returns the number of lines in the file.
func (s *Store) Len() (int, error) {
	lines, err := s.readLines()
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// Peek returns the line after the first skip lines without modifying the file.
// ok is false when the file has no such line.
func (s *Store) Peek(skip int) (string, bool, error) {
	lines, err := s.readLines()
	if err != nil {
		return "", false, err
	}
	if skip < 0 || skip >= len(lines) {
		return "", false, nil
	}
	return lines[skip], true, nil
}

// Remove deletes the line after the first skip lines and returns it. When the
// file has no such line it is left untouched and ok is false.
func (s *Store) Remove(skip int) (string, bool, error) {
	lines, err := s.readLines()
	if err != nil {
		return "", false, err
	}
	if skip < 0 || skip >= len(lines) {
		return "", false, nil
	}

	removed := lines[skip]
	rest := make([]string, 0, len(lines)-1)
	rest = append(rest, lines[:skip]...)
	rest = append(rest, lines[skip+1:]...)

	if err := s.rewrite(rest); err != nil {
		return "", false, err
	}
	return removed, true, nil
}

// PopFront removes and returns the first line.
func (s *Store) PopFront() (string, bool, error) {
	return s.Remove(0)
}

// Reset deletes the file so the next run generates a fresh list.
// A missing file is not an error.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove list file: %w", err)
	}
	return nil
}

func (s *Store) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines, nil
}

// rewrite replaces the file content with lines. No lines means a zero-byte file.
func (s *Store) rewrite(lines []string) error {
	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp list file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp list file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp list file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp list file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp list file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace list file: %w", err)
	}
	return nil
}
