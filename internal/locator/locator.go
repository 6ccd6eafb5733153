// Package locator resolves executables against an explicit PATH value.
package locator

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// Locator finds executables. It never consults the process environment after
// construction, so the same (name, PATH) pair always yields the same answer for
// an unchanged filesystem.
type Locator struct {
	fs         afero.Fs
	separator  string
	extensions []string // Windows PATHEXT, lower-cased with leading dot
}

// New returns a locator for the host platform. On Windows the executable
// extensions come from PATHEXT at construction time.
func New(fs afero.Fs) *Locator {
	if runtime.GOOS == "windows" {
		return NewWindows(fs, os.Getenv("PATHEXT"))
	}
	return &Locator{fs: fs, separator: ":"}
}

// NewWindows returns a locator using ';' separated PATH values and the given PATHEXT.
func NewWindows(fs afero.Fs, pathext string) *Locator {
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	var exts []string
	for _, e := range strings.Split(pathext, ";") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &Locator{fs: fs, separator: ";", extensions: exts}
}

// NewUnix returns a locator using ':' separated PATH values and permission bits.
func NewUnix(fs afero.Fs) *Locator {
	return &Locator{fs: fs, separator: ":"}
}

// Locate returns the absolute location of name on pathValue, or false.
// A name containing a path separator is checked directly instead of searched.
func (l *Locator) Locate(name, pathValue string) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) {
		return l.resolve(name)
	}
	for _, dir := range strings.Split(pathValue, l.separator) {
		dir = strings.Trim(strings.TrimSpace(dir), `"`)
		if dir == "" {
			continue
		}
		if found, ok := l.resolve(filepath.Join(dir, name)); ok {
			return found, true
		}
	}
	return "", false
}

func (l *Locator) resolve(candidate string) (string, bool) {
	if l.extensions == nil {
		if l.isExecutable(candidate, true) {
			return candidate, true
		}
		return "", false
	}

	// A name that already carries a PATHEXT extension is tried as-is first.
	if l.hasExtension(candidate) && l.isExecutable(candidate, false) {
		return candidate, true
	}
	for _, ext := range l.extensions {
		if l.isExecutable(candidate+ext, false) {
			return candidate + ext, true
		}
	}
	return "", false
}

func (l *Locator) hasExtension(candidate string) bool {
	ext := strings.ToLower(filepath.Ext(candidate))
	for _, e := range l.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (l *Locator) isExecutable(path string, checkMode bool) bool {
	info, err := l.fs.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if checkMode {
		return info.Mode().Perm()&0o111 != 0
	}
	return true
}
