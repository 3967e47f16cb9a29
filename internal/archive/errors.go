package archive

import "errors"

var (
	// ErrUnsupportedArchive is returned when a path does not end in .aia or .zip.
	ErrUnsupportedArchive = errors.New("unsupported archive: expected .aia or .zip")

	// ErrPathInName is returned when an entry lookup is given a name that
	// contains a path separator. Lookups take bare file names only.
	ErrPathInName = errors.New("entry name must not contain a path separator")

	// ErrEntryNotFound is returned when no entry matches a bare file name.
	ErrEntryNotFound = errors.New("no entry matches file name")

	// ErrAmbiguousEntry is returned when several entries end in the same
	// bare file name and none matches it exactly.
	ErrAmbiguousEntry = errors.New("several entries match file name")

	// ErrMalformedProperties is returned when project.properties has no
	// key=value pair on its second line.
	ErrMalformedProperties = errors.New("malformed project.properties")

	// ErrNotDirectory is returned when a users directory or project
	// directory argument is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)
