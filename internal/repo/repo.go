// Package repo scans a directory tree of markdown files and turns every
// checkbox line into a Task. Each Scan is a full rescan; nothing is cached
// between calls.
package repo

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"schedbot/internal/task"
)

// Set is the result of one scan, partitioned by completion state. Errors
// collects per-file read failures; a bad file never aborts the scan.
type Set struct {
	Incomplete []task.Task
	Completed  []task.Task
	Errors     []error
}

// All returns both partitions, incomplete first.
func (s *Set) All() []task.Task {
	out := make([]task.Task, 0, len(s.Incomplete)+len(s.Completed))
	out = append(out, s.Incomplete...)
	out = append(out, s.Completed...)
	return out
}

func (s *Set) Empty() bool {
	return len(s.Incomplete) == 0 && len(s.Completed) == 0
}

// Scan walks root recursively and parses every .md and .txt file line by
// line. Unreadable entries are recorded and skipped. A missing root yields
// an empty set, not a failure.
func Scan(root string) *Set {
	set := &Set{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			set.Errors = append(set.Errors, err)
			log.WithField("path", path).Errorf("scan: %v", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isTaskFile(d.Name()) {
			return nil
		}
		if err := scanFile(path, set); err != nil {
			set.Errors = append(set.Errors, err)
			log.WithField("path", path).Errorf("scan: %v", err)
		}
		return nil
	})
	if err != nil {
		set.Errors = append(set.Errors, err)
	}
	return set
}

func isTaskFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt":
		return true
	}
	return false
}

func scanFile(path string, set *Set) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		t, ok := task.ParseLine(sc.Text(), source)
		if !ok {
			continue
		}
		if t.Completed {
			set.Completed = append(set.Completed, t)
		} else {
			set.Incomplete = append(set.Incomplete, t)
		}
	}
	return sc.Err()
}
