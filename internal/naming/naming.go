// Package naming picks collision-free file names inside evidence folders.
//
// Both functions only read the directory; they never create files. Callers
// that need the name reserved must write the file before asking again.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// SequentialPattern matches files produced by NextSequentialFilename.
var SequentialPattern = regexp.MustCompile(`^screenshot-(\d+)\.png$`)

// NextSequentialFilename returns "screenshot-NNN.png" where NNN is one more
// than the highest number already present in folder. Gaps are not filled:
// with only 005 and 009 present the result is 010. A missing or unreadable
// folder counts as empty.
func NextSequentialFilename(folder string) string {
	highest := 0

	entries, err := os.ReadDir(folder)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			m := SequentialPattern.FindStringSubmatch(entry.Name())
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n > highest {
				highest = n
			}
		}
	}

	return fmt.Sprintf("screenshot-%03d.png", highest+1)
}

// NextAvailableFilename returns base unchanged if no such file exists in
// folder, otherwise the first of "name (2).ext", "name (3).ext", ... that
// does not exist.
func NextAvailableFilename(folder, base string) string {
	if !exists(filepath.Join(folder, base)) {
		return base
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, counter, ext)
		if !exists(filepath.Join(folder, candidate)) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
