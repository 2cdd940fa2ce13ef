// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// SourceSet is the classified result of scanning a script directory.
type SourceSet struct {
	// Scripts are the tree source files, outside any templates/ or files/
	// directory.
	Scripts []string
	// Templates are all files below a directory named "templates".
	Templates []string
	// Files are all files below a directory named "files".
	Files []string
}

// ScanScriptDir recursively searches rootPath for script sources. Directories
// named exactly "templates" and "files" are excluded from the script search;
// their contents are collected separately. Only files with the given
// extension count as scripts; template and file blobs are taken as-is.
func ScanScriptDir(rootPath string, extension string) (*SourceSet, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	set := &SourceSet{}
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case underDirNamed(rootPath, path, "templates"):
			set.Templates = append(set.Templates, path)
		case underDirNamed(rootPath, path, "files"):
			set.Files = append(set.Files, path)
		case strings.HasSuffix(d.Name(), extension):
			set.Scripts = append(set.Scripts, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// underDirNamed reports whether path has a path segment equal to name
// somewhere between rootPath and the file itself.
func underDirNamed(rootPath, path, name string) bool {
	rel, err := filepath.Rel(rootPath, filepath.Dir(path))
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == name {
			return true
		}
	}
	return false
}
