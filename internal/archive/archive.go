package archive

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Supported archive extensions.
const (
	ExtAIA = ".aia"
	ExtZIP = ".zip"
)

// IsArchivePath reports whether p has a supported archive extension.
func IsArchivePath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ExtAIA, ExtZIP:
		return true
	default:
		return false
	}
}

// Archive is a project archive held in memory.
type Archive struct {
	path   string
	size   int64
	digest string
	zr     *zip.Reader
}

// Open reads the archive at p and indexes its entries.
func Open(p string) (*Archive, error) {
	if !IsArchivePath(p) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, p)
	}
	data, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return FromBytes(p, data)
}

// FromBytes indexes an archive already read into memory. p is only used
// for reporting.
func FromBytes(p string, data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", p, err)
	}
	sum := sha3.Sum256(data)
	return &Archive{
		path:   p,
		size:   int64(len(data)),
		digest: hex.EncodeToString(sum[:]),
		zr:     zr,
	}, nil
}

// Path returns the path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Size returns the archive size in bytes.
func (a *Archive) Size() int64 {
	return a.size
}

// Digest returns the hex encoded SHA3-256 digest of the archive bytes.
func (a *Archive) Digest() string {
	return a.digest
}

// Names returns the names of all entries in archive order, directories included.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// Resolve returns the full entry name for a bare file name. An entry named
// exactly name wins; otherwise exactly one entry must end in "/"+name.
func (a *Archive) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrPathInName, name)
	}

	var matches []string
	for _, f := range a.zr.File {
		if isDir(f) {
			continue
		}
		if f.Name == name {
			return f.Name, nil
		}
		if strings.HasSuffix(f.Name, "/"+name) {
			matches = append(matches, f.Name)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s [%s]", ErrAmbiguousEntry, name, strings.Join(matches, ","))
	}
}

// ReadEntry returns the contents of the entry with the given full name.
func (a *Archive) ReadEntry(fullName string) ([]byte, error) {
	f := a.file(fullName)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, fullName)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", fullName, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", fullName, err)
	}
	return data, nil
}

// Lines resolves a bare file name and returns the entry's lines with their
// line terminators kept.
func (a *Archive) Lines(name string) ([]string, error) {
	fullName, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := a.ReadEntry(fullName)
	if err != nil {
		return nil, err
	}
	return splitLines(data), nil
}

func (a *Archive) file(fullName string) *zip.File {
	for _, f := range a.zr.File {
		if f.Name == fullName {
			return f
		}
	}
	return nil
}

func splitLines(data []byte) []string {
	lines := make([]string, 0)
	r := bufio.NewReader(bytes.NewReader(data))
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err != nil {
			return lines
		}
	}
}

func isDir(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir()
}

// baseName returns the last slash separated element of an entry name.
func baseName(entry string) string {
	return path.Base(entry)
}
