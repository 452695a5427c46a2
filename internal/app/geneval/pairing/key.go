package pairing

import (
	"fmt"
	"strings"
)

// inshopTag marks files named by the in-shop gallery convention, their stem
// is already a usable key.
const inshopTag = "inshop"

// keyLen is how many characters the digit convention takes from the first digit.
const keyLen = 8

// UnrecognizedNameError means no key convention applies to a filename. One
// bad name usually means the whole corpus follows a different scheme, so
// callers treat this as fatal instead of skipping the file.
type UnrecognizedNameError struct {
	Filename string
}

func (e *UnrecognizedNameError) Error() string {
	return fmt.Sprintf("cannot find number in filename: %s", e.Filename)
}

// ExtractKey derives the key that matches a prediction to its ground truth.
// Ground truth and predictions come from different upstream pipelines with
// different naming, this is what folds both into one key space. Two
// conventions are supported: in-shop names keep everything before the first
// dot, any other name takes the 8 characters starting at the first digit.
// The window is not validated, short names yield short keys and the window
// may run into non digits or the extension.
func ExtractKey(filename string) (string, error) {
	if strings.Contains(filename, inshopTag) {
		var stem, _, _ = strings.Cut(filename, ".")
		return stem, nil
	}

	for i := 0; i < len(filename); i++ {
		if filename[i] >= '0' && filename[i] <= '9' {
			var end = i + keyLen
			if end > len(filename) {
				end = len(filename)
			}
			return filename[i:end], nil
		}
	}

	return "", &UnrecognizedNameError{Filename: filename}
}
