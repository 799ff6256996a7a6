package arxivhunter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Store manages the per-category flat files under one data directory:
//
//	<dir>/<store>/<store>.txt
//
// Every file is empty or a sequence of encoded rows, one per line. Rewrites
// go through a temporary file and a rename, so a reader never sees a
// partially written store. The Store assumes a single writer.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing the named store.
func (s *Store) Path(store string) string {
	return filepath.Join(s.dir, store, store+".txt")
}

// Categories returns the store names present on disk, sorted.
func (s *Store) Categories() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the named store has a backing file.
func (s *Store) Exists(store string) bool {
	_, err := os.Stat(s.Path(store))
	return err == nil
}

// Rows decodes every row of the named store. A missing store yields an
// ErrFileState error.
func (s *Store) Rows(store string) ([]Row, error) {
	lines, err := s.lines(store)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		r, err := DecodeRow(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.Path(store), i+1, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Add appends a row for rec to its category store, creating the store when
// absent. An identifier that already has a row yields ErrExists.
func (s *Store) Add(rec *Record, comment string) error {
	store, err := validStoreName(rec.StoreName())
	if err != nil {
		return err
	}
	lines, err := s.lines(store)
	if err != nil && !errors.Is(err, ErrFileState) {
		return err
	}
	for _, line := range lines {
		if rowID(line) == rec.ID {
			return fmt.Errorf("%w: %s in %s", ErrExists, rec.ID, store)
		}
	}

	if err := os.MkdirAll(filepath.Join(s.dir, store), 0o755); err != nil {
		return fmt.Errorf("create store %s: %w", store, err)
	}
	lines = append(lines, rec.Row(comment).Encode())
	if err := s.write(store, lines); err != nil {
		return err
	}
	s.log.Debug("row added", zap.String("id", rec.ID), zap.String("store", store))
	return nil
}

// Lookup returns the row for id in the named store.
func (s *Store) Lookup(store, id string) (Row, bool, error) {
	lines, err := s.lines(store)
	if err != nil {
		return Row{}, false, err
	}
	for _, line := range lines {
		if rowID(line) != id {
			continue
		}
		r, err := DecodeRow(line)
		if err != nil {
			return Row{}, false, err
		}
		return r, true, nil
	}
	return Row{}, false, nil
}

// Comment returns the stored comment for id in the named store, or "" when
// the store or the identifier is absent.
func (s *Store) Comment(store, id string) string {
	r, ok, err := s.Lookup(store, id)
	if err != nil {
		s.log.Warn("returning empty comment", zap.String("id", id), zap.String("store", store), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return r.Comment
}

// Find searches every store for id.
func (s *Store) Find(id string) (string, Row, error) {
	stores, err := s.Categories()
	if err != nil {
		return "", Row{}, err
	}
	for _, store := range stores {
		r, ok, err := s.Lookup(store, id)
		if errors.Is(err, ErrFileState) {
			s.log.Warn("skipping store", zap.String("id", id), zap.String("store", store), zap.Error(err))
			continue
		}
		if err != nil {
			return "", Row{}, err
		}
		if ok {
			return store, r, nil
		}
	}
	return "", Row{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// RemoveFrom rewrites the named store without the rows whose identifier
// equals any of ids. A missing store is logged and treated as empty.
func (s *Store) RemoveFrom(store string, ids ...string) (int, error) {
	lines, err := s.lines(store)
	if errors.Is(err, ErrFileState) {
		s.log.Warn("skipping removal", zap.Strings("ids", ids), zap.Error(err))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := lines[:0:0]
	for _, line := range lines {
		if !drop[rowID(line)] {
			kept = append(kept, line)
		}
	}
	removed := len(lines) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(store, kept); err != nil {
		return 0, err
	}
	s.log.Debug("rows removed", zap.String("store", store), zap.Int("count", removed))
	return removed, nil
}

// Remove drops the rows for ids from every store and returns how many rows
// went away.
func (s *Store) Remove(ids ...string) (int, error) {
	stores, err := s.Categories()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, store := range stores {
		if !s.Exists(store) {
			continue
		}
		n, err := s.RemoveFrom(store, ids...)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Replace rewrites the row with r.ID in the named store in place.
func (s *Store) Replace(store string, r Row) error {
	lines, err := s.lines(store)
	if err != nil {
		return err
	}
	found := false
	for i, line := range lines {
		if rowID(line) == r.ID {
			lines[i] = r.Encode()
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s in %s", ErrNotFound, r.ID, store)
	}
	return s.write(store, lines)
}

// Drop deletes the named store's directory.
func (s *Store) Drop(store string) error {
	if _, err := validStoreName(store); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.dir, store)); err != nil {
		return fmt.Errorf("drop store %s: %w", store, err)
	}
	return nil
}

// lines returns the non-blank lines of the named store.
func (s *Store) lines(store string) ([]string, error) {
	path := s.Path(store)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no store file %s", ErrFileState, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", store, err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read store %s: %w", store, err)
	}
	return lines, nil
}

func (s *Store) write(store string, lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := writeFileAtomic(s.Path(store), buf.Bytes()); err != nil {
		return fmt.Errorf("write store %s: %w", store, err)
	}
	return nil
}

func validStoreName(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid store name %q", ErrParse, name)
	}
	return name, nil
}

// writeFileAtomic writes data to a temporary file next to path, syncs it
// and renames it over path.
func writeFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
