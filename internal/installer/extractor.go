package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/spf13/afero"
	"github.com/xi2/xz" // For reading .xz compressed data

	"flutter-bootstrap/internal/logger"
)

// ErrMultipleRoots is returned when archive entries do not share one top-level directory.
var ErrMultipleRoots = errors.New("archive has more than one top-level entry")

// ExtractArchive unpacks src into dest and returns the archive's top-level entry name.
// The format is chosen from the file extension. Every entry must live under the
// same top-level name, since that single directory is what gets moved into place.
func ExtractArchive(fs afero.Fs, src, dest string) (string, error) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(fs, src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(fs, src, dest)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTarArchive(fs, src, dest)
	default:
		return "", fmt.Errorf("unsupported archive format: %s", src)
	}
}

// topLevelOf returns the first path element of an archive entry name.
func topLevelOf(name string) string {
	name = strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "./")
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

// rootTracker remembers the top-level name of the first entry and rejects any
// entry under a different one.
type rootTracker struct {
	name string
}

func (r *rootTracker) add(entry string) error {
	top := topLevelOf(entry)
	switch {
	case top == "" || top == ".":
		return nil
	case r.name == "":
		r.name = top
		return nil
	case top != r.name:
		return fmt.Errorf("%w: %q and %q", ErrMultipleRoots, r.name, top)
	}
	return nil
}

// entryTarget joins an archive entry name onto dest. The name is rooted before
// cleaning so ".." elements cannot climb out of dest.
func entryTarget(dest, name string) string {
	clean := path.Clean("/" + strings.ReplaceAll(name, `\`, "/"))
	return filepath.Join(dest, filepath.FromSlash(clean[1:]))
}

func writeEntry(fs afero.Fs, target string, r io.Reader, mode os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if mode.Perm() == 0 {
		mode = 0o644
	}
	out, err := fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return fs.Chmod(target, mode.Perm())
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(fs afero.Fs, src, dest string) (string, error) {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := fs.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return "", err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	var root rootTracker
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if err := root.add(hdr.Name); err != nil {
			return "", err
		}

		target := entryTarget(dest, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := writeEntry(fs, target, tr, hdr.FileInfo().Mode()); err != nil {
				return "", err
			}
		default:
			logger.Debug("[DEBUG] skipping tar entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
	return root.name, nil
}

// extractZip extracts a .zip archive
func extractZip(fs afero.Fs, src, dest string) (string, error) {
	f, err := fs.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return "", err
	}

	var root rootTracker
	for _, zf := range r.File {
		if err := root.add(zf.Name); err != nil {
			return "", err
		}
		target := entryTarget(dest, zf.Name)
		if zf.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return "", err
		}
		err = writeEntry(fs, target, rc, zf.Mode())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return root.name, nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(fs afero.Fs, src, dest string) (string, error) {
	f, err := fs.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	r, err := sevenzip.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("failed to open 7z archive: %w", err)
	}

	var root rootTracker
	for _, sf := range r.File {
		if err := root.add(sf.Name); err != nil {
			return "", err
		}
		target := entryTarget(dest, sf.Name)
		if sf.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return "", err
		}
		err = writeEntry(fs, target, rc, sf.Mode())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return root.name, nil
}
