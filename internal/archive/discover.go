package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// Project is an archive found on disk.
type Project struct {
	// Path is the archive path.
	Path string

	// User is the name of the user directory the project was found in.
	// It is empty for projects given directly.
	User string

	// Temporary is true when the archive was created by zipping a project
	// directory and should be removed once summarized.
	Temporary bool
}

// Remove deletes the archive if it is temporary.
func (p Project) Remove() error {
	if !p.Temporary {
		return nil
	}
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove temporary archive: %w", err)
	}
	return nil
}

// CompilePatterns compiles glob patterns with '/' as separator.
func CompilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// MatchAny reports whether any of globs matches s.
func MatchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// ResolveTarget turns a command line argument into a project. Archives are
// used as they are; a directory is zipped next to itself into a temporary
// archive.
func ResolveTarget(target string) (Project, error) {
	info, err := os.Stat(target)
	if err != nil {
		return Project{}, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if info.IsDir() {
		dst := strings.TrimRight(target, `/\`) + ExtZIP
		if err := ZipDir(target, dst); err != nil {
			return Project{}, err
		}
		return Project{Path: dst, Temporary: true}, nil
	}
	if !IsArchivePath(target) {
		return Project{}, fmt.Errorf("%w: %s", ErrUnsupportedArchive, target)
	}
	return Project{Path: target}, nil
}

// FindProjects lists the projects of a corpus laid out as
// usersDir/<user>/<project>. Users are visited in name order and only the
// first maxUsers user directories are used (0 means all). Project
// directories are zipped to <project>.zip and returned as temporary
// archives; .aia and .zip files are returned as they are. Paths relative
// to usersDir (with '/' separators) or base names matching an exclude
// pattern are skipped.
//
// On error the projects found so far are returned with it, so the caller
// can remove the temporary archives already created.
func FindProjects(usersDir string, maxUsers int, exclude []glob.Glob) ([]Project, error) {
	info, err := os.Stat(usersDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat users directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, usersDir)
	}

	users, err := userDirs(usersDir)
	if err != nil {
		return nil, err
	}
	if maxUsers > 0 && len(users) > maxUsers {
		users = users[:maxUsers]
	}

	projects := make([]Project, 0)
	for _, user := range users {
		found, err := userProjects(usersDir, user, exclude)
		projects = append(projects, found...)
		if err != nil {
			return projects, err
		}
	}
	slices.SortFunc(projects, func(a, b Project) int {
		return strings.Compare(a.Path, b.Path)
	})
	return projects, nil
}

func userDirs(usersDir string) ([]string, error) {
	entries, err := os.ReadDir(usersDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read users directory: %w", err)
	}
	users := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			users = append(users, e.Name())
		}
	}
	return users, nil
}

func userProjects(usersDir, user string, exclude []glob.Glob) ([]Project, error) {
	userDir := filepath.Join(usersDir, user)
	entries, err := os.ReadDir(userDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read user directory %s: %w", user, err)
	}

	dirs := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			dirs[e.Name()] = true
		}
	}

	var projects []Project
	for _, e := range entries {
		name := e.Name()
		rel := user + "/" + name
		if MatchAny(exclude, rel) || MatchAny(exclude, name) {
			continue
		}
		full := filepath.Join(userDir, name)

		switch {
		case e.IsDir():
			dst := full + ExtZIP
			if err := ZipDir(full, dst); err != nil {
				return projects, err
			}
			projects = append(projects, Project{Path: dst, User: user, Temporary: true})
		case IsArchivePath(name):
			// A zip produced from a sibling directory is picked up above.
			if strings.EqualFold(filepath.Ext(name), ExtZIP) && dirs[strings.TrimSuffix(name, filepath.Ext(name))] {
				continue
			}
			projects = append(projects, Project{Path: full, User: user})
		}
	}
	return projects, nil
}

// ZipDir writes every regular file below dir into a new zip archive at dst.
// Entry names are relative to the parent of dir, so they start with the
// directory's own name.
func ZipDir(dir, dst string) (err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	zw := zip.NewWriter(out)
	base := filepath.Dir(filepath.Clean(dir))
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to zip %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
