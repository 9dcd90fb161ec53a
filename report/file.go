// Package report renders flow table snapshots into the report file format
// and drives the periodic reporter task.
package report

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// File wraps the report's destination file. It is shared by the Reporter
// task and Sniffer.SaveReport, which per the concurrency model never write
// at the same time (the Reporter only runs while Running; SaveReport
// transitions the run to Stop first), but the mutex keeps that invariant
// cheap to verify rather than relied upon.
type File struct {
	mu   sync.Mutex
	f    *os.File
	path string

	// headerWritten tracks whether the "Scanning on" heading has already
	// been appended, so a long-running interval reporter only writes it once.
	headerWritten bool
}

// Create opens path for writing, creating it if necessary and truncating
// any existing contents.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create report file %q", path)
	}
	return &File{f: f, path: path}, nil
}

// Append writes b to the current end of the file.
func (r *File) Append(b []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.f.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrapf(err, "failed to seek report file %q", r.path)
	}
	if _, err := r.f.Write(b); err != nil {
		return errors.Wrapf(err, "failed to write report file %q", r.path)
	}
	return nil
}

// Rewind truncates the file and seeks back to offset 0, so the next Append
// call starts a fresh heading. Used by SaveReport when no interval reporter
// is running, so the final report replaces any earlier, partial content.
func (r *File) Rewind() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.f.Truncate(0); err != nil {
		return errors.Wrapf(err, "failed to truncate report file %q", r.path)
	}
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "failed to rewind report file %q", r.path)
	}
	r.headerWritten = false
	return nil
}

// Close closes the underlying file.
func (r *File) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

// needsHeader reports whether the next Append should be prefixed with the
// heading, and marks it written.
func (r *File) needsHeader() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.headerWritten {
		return false
	}
	r.headerWritten = true
	return true
}
