package chunk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const fileExt = ".csv.bz2"

// YearPrefix is the chunk filename prefix for one dump year.
func YearPrefix(year int) string {
	return fmt.Sprintf("quotes-%d", year)
}

// ChunkFiles lists the chunk files of a year inside dir, ordered by batch
// number.
func ChunkFiles(dir string, year int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	prefix := YearPrefix(year) + "-"

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Slice(files, func(i, j int) bool {
		return batchNumber(files[i]) < batchNumber(files[j])
	})

	return files, nil
}

// batchNumber parses the trailing chunk number; unparseable names sort last.
func batchNumber(path string) int {
	name := strings.TrimSuffix(filepath.Base(path), fileExt)
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// SpeakerSlug normalizes a speaker name for filenames: lowercase with runs
// of non-alphanumerics collapsed to single dashes.
func SpeakerSlug(speaker string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(speaker)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SpeakerFileName names the per-speaker extract for one year.
func SpeakerFileName(speaker string, year int) string {
	return fmt.Sprintf("%s-quotes-%d%s", SpeakerSlug(speaker), year, fileExt)
}

// CombinedFileName names the all-years extract for a speaker.
func CombinedFileName(speaker string) string {
	return fmt.Sprintf("all-%s-quotes%s", SpeakerSlug(speaker), fileExt)
}

// SpeakerFiles lists the yearly extract files of a speaker inside dir,
// sorted by name (and therefore by year).
func SpeakerFiles(dir, speaker string) ([]string, error) {
	pattern := filepath.Join(dir, SpeakerSlug(speaker)+"-quotes-*"+fileExt)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}
