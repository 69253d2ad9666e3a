package chunk

import (
	"fmt"
	"path/filepath"

	"github.com/speakerlens/quote-radar/internal/models"
	"github.com/speakerlens/quote-radar/internal/processing"
)

// ExtractSpeaker scans every chunk of a year and returns the quotes whose
// speaker matches exactly, dropping attributions below cutoff. A year with
// no chunk files is an error rather than an empty result.
func ExtractSpeaker(dir string, year int, speaker string, cutoff float64) ([]models.RawQuote, error) {
	files, err := ChunkFiles(dir, year)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no chunk files for year %d in %s", year, dir)
	}

	var matched []models.RawQuote
	for _, file := range files {
		quotes, err := ReadQuotesFile(file)
		if err != nil {
			return nil, err
		}
		for _, q := range quotes {
			if q.Speaker != speaker {
				continue
			}
			if cutoff > 0 && processing.Probability(q.Probas) < cutoff {
				continue
			}
			matched = append(matched, q)
		}
	}

	return matched, nil
}

// FilterHighProbability keeps quotes whose top attribution probability is at
// least cutoff.
func FilterHighProbability(quotes []models.RawQuote, cutoff float64) []models.RawQuote {
	kept := make([]models.RawQuote, 0, len(quotes))
	for _, q := range quotes {
		if processing.Probability(q.Probas) >= cutoff {
			kept = append(kept, q)
		}
	}
	return kept
}

// WriteSpeakerFile writes a yearly per-speaker extract into dir and returns
// its path.
func WriteSpeakerFile(dir, speaker string, year int, quotes []models.RawQuote, level int) (string, error) {
	if level <= 0 {
		level = DefaultCompressionLevel
	}
	path := filepath.Join(dir, SpeakerFileName(speaker, year))
	if err := writeQuotesFile(path, level, quotes); err != nil {
		return "", err
	}
	return path, nil
}

// CombineSpeaker merges every yearly extract of a speaker into a single
// all-years file and returns its path and row count.
func CombineSpeaker(dir, speaker string, level int) (string, int, error) {
	if level <= 0 {
		level = DefaultCompressionLevel
	}

	files, err := SpeakerFiles(dir, speaker)
	if err != nil {
		return "", 0, err
	}
	if len(files) == 0 {
		return "", 0, fmt.Errorf("no yearly quote files for %q in %s", speaker, dir)
	}

	var combined []models.RawQuote
	for _, file := range files {
		quotes, err := ReadQuotesFile(file)
		if err != nil {
			return "", 0, err
		}
		combined = append(combined, quotes...)
	}

	path := filepath.Join(dir, CombinedFileName(speaker))
	if err := writeQuotesFile(path, level, combined); err != nil {
		return "", 0, err
	}
	return path, len(combined), nil
}
