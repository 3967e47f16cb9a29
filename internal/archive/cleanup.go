package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cleanup removes the files ending in ext that sit directly inside each
// user directory of usersDir. With dryRun set nothing is removed. The
// matching paths are returned either way.
func Cleanup(usersDir, ext string, dryRun bool) ([]string, error) {
	if ext == "" {
		ext = ExtZIP
	}
	users, err := userDirs(usersDir)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0)
	for _, user := range users {
		userDir := filepath.Join(usersDir, user)
		entries, err := os.ReadDir(userDir)
		if err != nil {
			return removed, fmt.Errorf("failed to read user directory %s: %w", user, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			p := filepath.Join(userDir, e.Name())
			if !dryRun {
				if err := os.Remove(p); err != nil {
					return removed, fmt.Errorf("failed to remove %s: %w", p, err)
				}
			}
			removed = append(removed, p)
		}
	}
	return removed, nil
}
