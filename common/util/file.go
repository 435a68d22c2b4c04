package util

import (
	"os"
	"sort"

	"vincit.fi/image-metadata/common/logger"
)

const directoryMode = 0o755

func DoesFileExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MakeDirectoriesIfNotExist creates path and any missing parents.
func MakeDirectoriesIfNotExist(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	logger.Debug.Printf("Creating directory '%s'", path)
	return os.MkdirAll(path, directoryMode)
}

// ListRegularFiles returns the names of the regular files in dir, sorted.
func ListRegularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
