// Package archive extracts distribution archives.
//
// Zip and tar archives are supported, with gzip, bzip2 and xz tar
// compression detected from the file name. Every entry path is
// validated against the destination before anything is written: an
// archive containing an absolute entry, or one that climbs outside the
// destination, is rejected as a whole with ErrUnsafePath.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/distkit/distkit/pkg/cache"
)

var (
	// ErrUnknownFormat is returned when the archive format cannot be
	// determined from the file name.
	ErrUnknownFormat = errors.New("unknown archive format")

	// ErrUnsafePath is returned when an archive entry would resolve
	// outside the extraction destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")
)

// Format identifies an archive format.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tgz"
	FormatTarBz2 Format = "tbz"
	FormatTarXz  Format = "txz"
)

// Options controls extraction.
type Options struct {
	// Format overrides file-name detection when non-empty.
	Format Format

	// Progress, when set, is called after each extracted entry.
	Progress func(done, total int)
}

// DetectFormat infers the archive format from the file name.
func DetectFormat(name string) (Format, error) {
	switch {
	case hasSuffix(name, ".zip", ".whl"):
		return FormatZip, nil
	case hasSuffix(name, ".tar.gz", ".tgz"):
		return FormatTarGz, nil
	case hasSuffix(name, ".tar.bz2", ".tbz"):
		return FormatTarBz2, nil
	case hasSuffix(name, ".tar.xz", ".txz"):
		return FormatTarXz, nil
	case hasSuffix(name, ".tar"):
		return FormatTar, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Extract unpacks src into destDir, inferring the format from the file
// name.
func Extract(src, destDir string) error {
	return ExtractWith(src, destDir, Options{})
}

// ExtractWith unpacks src into destDir according to opts.
func ExtractWith(src, destDir string, opts Options) error {
	format := opts.Format
	if format == "" {
		detected, err := DetectFormat(src)
		if err != nil {
			return err
		}
		format = detected
	}

	dest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", destDir, err)
	}

	switch format {
	case FormatZip:
		return extractZip(src, dest, opts.Progress)
	case FormatTar, FormatTarGz, FormatTarBz2, FormatTarXz:
		return extractTar(src, dest, format, opts.Progress)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// ExtractToCache unpacks src into a per-archive directory under the
// user cache and returns that directory. An already populated
// directory is reused without re-extracting.
func ExtractToCache(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", src, err)
	}
	base, err := cache.Base()
	if err != nil {
		return "", err
	}
	dest := filepath.Join(base, cache.PathDir(abs))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	if err := Extract(abs, dest); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

// ===== Zip =====

func extractZip(src, destDir string, progress func(done, total int)) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer zr.Close()

	paths := make([]string, len(zr.File))
	for i, f := range zr.File {
		p, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		paths[i] = p
	}

	total := len(zr.File)
	for i, f := range zr.File {
		if err := writeZipEntry(f, paths[i]); err != nil {
			return err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, dest string) error {
	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	return writeFile(dest, rc, entryMode(f.Mode()))
}

// ===== Tar =====

func extractTar(src, destDir string, format Format, progress func(done, total int)) error {
	total, err := scanTar(src, destDir, format)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	tr, err := tarReader(f, format)
	if err != nil {
		return err
	}

	done := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", src, err)
		}
		if err := writeTarEntry(hdr, tr, destDir); err != nil {
			return err
		}
		done++
		if progress != nil {
			progress(done, total)
		}
	}
	return nil
}

// scanTar walks the archive once to validate every entry path and link
// target before extraction touches the filesystem.
func scanTar(src, destDir string, format Format) (int, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	tr, err := tarReader(f, format)
	if err != nil {
		return 0, err
	}

	total := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", src, err)
		}
		if _, err := safeJoin(destDir, hdr.Name); err != nil {
			return 0, err
		}
		if err := checkLink(destDir, hdr); err != nil {
			return 0, err
		}
		total++
	}
	return total, nil
}

func tarReader(f io.Reader, format Format) (*tar.Reader, error) {
	switch format {
	case FormatTar:
		return tar.NewReader(f), nil
	case FormatTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return tar.NewReader(gz), nil
	case FormatTarBz2:
		return tar.NewReader(bzip2.NewReader(f)), nil
	case FormatTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return tar.NewReader(xr), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

func writeTarEntry(hdr *tar.Header, r io.Reader, destDir string) error {
	p, err := safeJoin(destDir, hdr.Name)
	if err != nil {
		return err
	}
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(p, 0o755)
	case tar.TypeReg:
		return writeFile(p, r, entryMode(hdr.FileInfo().Mode()))
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(p), err)
		}
		os.Remove(p)
		if err := os.Symlink(hdr.Linkname, p); err != nil {
			return fmt.Errorf("symlink %s: %w", hdr.Name, err)
		}
	case tar.TypeLink:
		target, err := safeJoin(destDir, hdr.Linkname)
		if err != nil {
			return err
		}
		if err := os.Link(target, p); err != nil {
			return fmt.Errorf("link %s: %w", hdr.Name, err)
		}
	}
	return nil
}

// checkLink validates where a link entry points. Symlink targets are
// relative to the entry's directory, hard link targets to the archive
// root.
func checkLink(destDir string, hdr *tar.Header) error {
	switch hdr.Typeflag {
	case tar.TypeSymlink:
		if filepath.IsAbs(hdr.Linkname) {
			return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
		}
		resolved := path.Join(path.Dir(hdr.Name), hdr.Linkname)
		if _, err := safeJoin(destDir, resolved); err != nil {
			return err
		}
	case tar.TypeLink:
		if _, err := safeJoin(destDir, hdr.Linkname); err != nil {
			return err
		}
	}
	return nil
}

// ===== Helpers =====

// safeJoin resolves entry inside destDir. Absolute entries and entries
// that clean to a path outside destDir are rejected.
func safeJoin(destDir, entry string) (string, error) {
	name := filepath.FromSlash(entry)
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, entry)
	}
	p := filepath.Join(destDir, name)
	if p != destDir && !strings.HasPrefix(p, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, entry)
	}
	return p, nil
}

func writeFile(dest string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func entryMode(mode fs.FileMode) fs.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm
	}
	return 0o644
}

func hasSuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
