package pairing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is one scanned file, the full path and the base name.
type File struct {
	Path string
	Name string
}

// ImageExtensions are the file types the evaluator accepts, everything else
// is ignored by Scan.
var ImageExtensions = map[string]struct{}{
	".jpg": {},
	".png": {},
}

// Scan recursively collects the regular files under root. When exts is not
// nil a file is only kept when its lowercased extension is a member.
// progress, when not nil, is called with the running total once per kept
// file. Symlinks are not followed so link cycles cannot trap the walk.
// Order is whatever the platform returns, callers sort when they need to.
func Scan(root string, exts map[string]struct{}, progress func(found int)) ([]File, error) {
	var found int
	return scan(root, exts, progress, &found)
}

func scan(root string, exts map[string]struct{}, progress func(found int), found *int) ([]File, error) {
	var allFiles []File

	var entries, err = os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("Scan error reading dir: %s, err: %w", root, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			var subFiles, err = scan(filepath.Join(root, entry.Name()), exts, progress, found)
			if err != nil {
				return nil, err
			}
			allFiles = append(allFiles, subFiles...)
		} else if entry.Type().IsRegular() {
			if exts != nil {
				if _, ok := exts[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
					continue
				}
			}
			allFiles = append(allFiles, File{Path: filepath.Join(root, entry.Name()), Name: entry.Name()})
			*found++
			if progress != nil {
				progress(*found)
			}
		}
	}

	return allFiles, nil
}
