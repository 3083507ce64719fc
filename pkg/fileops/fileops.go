// Package fileops performs logged, dry-run-able filesystem mutations.
//
// An Operator wraps the write operations an installer needs: writing
// and copying files, ensuring directories, and removing stale trees.
// With DryRun set the operator logs and records what it would do
// without touching the filesystem. Recording captures every written
// file and created directory so a failed run can be rolled back.
//
//	op := fileops.New(logger)
//	op.StartRecording()
//	if err := install(op); err != nil {
//	    op.Rollback()
//	    return err
//	}
//	files, dirs, _ := op.Commit()
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotRecording is returned by Commit and Rollback when
	// StartRecording has not been called.
	ErrNotRecording = errors.New("recording is not active")

	// ErrWouldOverwrite is returned by CopyFile when the destination
	// exists but is not a regular file.
	ErrWouldOverwrite = errors.New("refusing to overwrite")
)

// Operator performs filesystem mutations. It is not safe for
// concurrent use.
type Operator struct {
	// DryRun suppresses all filesystem mutation; operations still log
	// and record.
	DryRun bool

	logger    *log.Logger
	ensured   map[string]bool
	recording bool
	files     map[string]bool
	dirs      map[string]bool
}

// New creates an operator that reports its actions through logger.
// A nil logger discards them.
func New(logger *log.Logger) *Operator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Operator{
		logger:  logger,
		ensured: make(map[string]bool),
	}
}

// WriteFile writes data to path, creating parent directories as needed.
func (o *Operator) WriteFile(path string, data []byte) error {
	if err := o.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	o.logger.Info("writing file", "path", path, "bytes", len(data))
	if !o.DryRun {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	o.recordFile(path)
	return nil
}

// CopyFile copies src to dst, creating parent directories as needed.
// A destination that exists as a symlink or a non-regular file is left
// alone and reported as ErrWouldOverwrite.
func (o *Operator) CopyFile(src, dst string) error {
	if err := o.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	o.logger.Info("copying file", "src", src, "dst", dst)
	if !o.DryRun {
		if info, err := os.Lstat(dst); err == nil {
			if info.Mode()&os.ModeSymlink != 0 {
				return fmt.Errorf("%w: %s is a symlink", ErrWouldOverwrite, dst)
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("%w: %s is not a regular file", ErrWouldOverwrite, dst)
			}
		}
		if err := copyContents(src, dst); err != nil {
			return err
		}
	}
	o.recordFile(dst)
	return nil
}

// EnsureDir creates path and any missing parents. Directories already
// ensured in this operator's lifetime are skipped without a stat.
func (o *Operator) EnsureDir(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if o.ensured[abs] {
		return nil
	}
	if _, err := os.Stat(abs); err == nil {
		o.ensured[abs] = true
		return nil
	}
	if parent := filepath.Dir(abs); parent != abs {
		if err := o.EnsureDir(parent); err != nil {
			return err
		}
	}
	o.logger.Info("creating directory", "path", abs)
	if !o.DryRun {
		if err := os.Mkdir(abs, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create %s: %w", abs, err)
		}
	}
	o.ensured[abs] = true
	o.recordDir(abs)
	return nil
}

// EnsureRemoved deletes path if it exists, recursively for directories.
// A recorded entry for the path is dropped.
func (o *Operator) EnsureRemoved(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if info.IsDir() {
		o.logger.Debug("removing directory tree", "path", path)
		if !o.DryRun {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("remove %s: %w", path, err)
			}
		}
		delete(o.dirs, abs)
	} else {
		o.logger.Debug("removing file", "path", path)
		if !o.DryRun {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove %s: %w", path, err)
			}
		}
		delete(o.files, path)
	}
	return nil
}

// IsWritable reports whether path, or the nearest existing parent when
// path does not exist yet, accepts writes.
func (o *Operator) IsWritable(path string) bool {
	p := path
	for {
		info, err := os.Stat(p)
		if err == nil {
			return writable(p, info)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return false
		}
		p = parent
	}
}

// Newer reports whether src is more recently modified than target, or
// target does not exist. A missing src is an error.
func (o *Operator) Newer(src, target string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}
	targetInfo, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", target, err)
	}
	return srcInfo.ModTime().After(targetInfo.ModTime()), nil
}

// ===== Recording =====

// StartRecording begins capturing written files and created
// directories. Any previous capture is discarded.
func (o *Operator) StartRecording() {
	o.recording = true
	o.files = make(map[string]bool)
	o.dirs = make(map[string]bool)
}

// Commit ends recording and returns the captured file and directory
// paths, each sorted.
func (o *Operator) Commit() (files, dirs []string, err error) {
	if !o.recording {
		return nil, nil, ErrNotRecording
	}
	files = slices.Sorted(maps.Keys(o.files))
	dirs = slices.Sorted(maps.Keys(o.dirs))
	o.reset()
	return files, dirs, nil
}

// Rollback removes every recorded file, then every recorded directory
// with subdirectories before their parents, and ends recording.
func (o *Operator) Rollback() error {
	if !o.recording {
		return ErrNotRecording
	}
	if !o.DryRun {
		for _, f := range slices.Sorted(maps.Keys(o.files)) {
			o.logger.Debug("rolling back file", "path", f)
			if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", f, err)
			}
		}
		dirs := slices.Sorted(maps.Keys(o.dirs))
		slices.Reverse(dirs)
		for _, d := range dirs {
			o.logger.Debug("rolling back directory", "path", d)
			if err := os.Remove(d); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", d, err)
			}
		}
	}
	o.reset()
	return nil
}

func (o *Operator) reset() {
	o.recording = false
	o.files = nil
	o.dirs = nil
}

func (o *Operator) recordFile(path string) {
	if o.recording {
		o.files[path] = true
	}
}

func (o *Operator) recordDir(path string) {
	if o.recording {
		o.dirs[path] = true
	}
}

// ===== Helpers =====

func copyContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return nil
}

// writable probes path for write access. Checking the permission bits
// alone would misreport read-only mounts and ACLs, so probe with a
// real open.
func writable(path string, info fs.FileInfo) bool {
	if info.IsDir() {
		probe, err := os.CreateTemp(path, ".writable-*")
		if err != nil {
			return false
		}
		name := probe.Name()
		probe.Close()
		os.Remove(name)
		return true
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
