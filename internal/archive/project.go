package archive

import (
	"strings"

	"github.com/gobwas/glob"
)

// File names and extensions with a fixed meaning inside a project.
const (
	PropertiesFile = "project.properties"
	BlocksExt      = ".bky"
	ComponentsExt  = ".scm"
)

// sourceExtensions are the extensions of project source files. Every
// other file is a media asset.
var sourceExtensions = map[string]bool{
	"properties": true,
	"bky":        true,
	"yail":       true,
	"scm":        true,
}

// ProjectName returns the value of the key=value pair on the second line of
// project.properties.
func (a *Archive) ProjectName() (string, error) {
	lines, err := a.Lines(PropertiesFile)
	if err != nil {
		return "", err
	}
	if len(lines) < 2 {
		return "", ErrMalformedProperties
	}
	_, value, ok := strings.Cut(strings.TrimRight(lines[1], "\r\n"), "=")
	if !ok {
		return "", ErrMalformedProperties
	}
	return value, nil
}

// ScreenNames returns the screen names of the project in archive order. A
// screen is any entry whose name ends in .bky; its name is the base name
// without the extension.
func (a *Archive) ScreenNames() []string {
	screens := make([]string, 0)
	for _, f := range a.zr.File {
		if isDir(f) || !strings.HasSuffix(f.Name, BlocksExt) {
			continue
		}
		screens = append(screens, strings.TrimSuffix(baseName(f.Name), BlocksExt))
	}
	return screens
}

// MediaEntry is a media asset inside an archive.
type MediaEntry struct {
	// Name is the full entry name.
	Name string

	// Base is the entry's base name, as listed in the summary.
	Base string

	// Size is the uncompressed size in bytes.
	Size uint64
}

// MediaEntries returns the assets of the project in archive order: every
// file entry with an extension that is not a source extension and whose
// base name matches none of the ignore patterns.
func (a *Archive) MediaEntries(ignore []glob.Glob) []MediaEntry {
	media := make([]MediaEntry, 0)
	for _, f := range a.zr.File {
		if isDir(f) {
			continue
		}
		base := baseName(f.Name)
		ext, ok := extension(base)
		if !ok || sourceExtensions[ext] {
			continue
		}
		if MatchAny(ignore, base) {
			continue
		}
		media = append(media, MediaEntry{Name: f.Name, Base: base, Size: f.UncompressedSize64})
	}
	return media
}

// MediaFiles returns the base names of MediaEntries.
func (a *Archive) MediaFiles(ignore []glob.Glob) []string {
	entries := a.MediaEntries(ignore)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Base)
	}
	return names
}

// extension returns the text after the last dot of a base name.
func extension(base string) (string, bool) {
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return "", false
	}
	return base[i+1:], true
}
