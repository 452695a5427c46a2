package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kmulvey/path"
	log "github.com/sirupsen/logrus"
)

// ImageFilesRegex matches the image files the evaluator can score.
var ImageFilesRegex = regexp.MustCompile(".*.jpg$|.*.png$|.*.JPG$|.*.PNG$")

// ResizeDir resizes every image in dir to exactly width x height and writes
// the results to the sibling directory <dir>_<height>. Files already present
// in the sibling are skipped so the pass is idempotent and cheap to re-run.
// The sibling name is part of the contract, callers redirect their ground
// truth reads to the returned path for the rest of the run.
func ResizeDir(dir string, width, height int) (string, error) {

	var resizedDir = fmt.Sprintf("%s_%d", strings.TrimSuffix(dir, string(os.PathSeparator)), height)
	if err := os.MkdirAll(resizedDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("ResizeDir error creating dir: %s, err: %w", resizedDir, err)
	}

	var files, err = path.ListFiles(dir, path.NewRegexFilesFilter(ImageFilesRegex))
	if err != nil {
		return "", fmt.Errorf("ResizeDir error listing dir: %s, err: %w", dir, err)
	}
	var fileNames = path.OnlyNames(files)
	sort.Strings(fileNames)

	var written int
	for _, file := range fileNames {
		var dest = filepath.Join(resizedDir, filepath.Base(file))
		if _, err := os.Stat(dest); err == nil {
			continue // resized on a previous run
		}

		img, err := Decode(file)
		if err != nil {
			return "", fmt.Errorf("ResizeDir error reading file: %s, err: %w", file, err)
		}

		if err := Encode(dest, Resize(img, width, height)); err != nil {
			return "", fmt.Errorf("ResizeDir error writing file: %s, err: %w", dest, err)
		}
		written++
	}
	log.Infof("resized %d images into %s", written, resizedDir)

	return resizedDir, nil
}
