package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var floatRegex = regexp.MustCompile(`\d+\.\d*`)

// Probability returns the attribution probability of the most probable
// speaker. Quotebank orders probas from most to least probable, so only the
// first pair matters. Records with no usable probability report 0 so that
// any positive cutoff filters them out.
func Probability(probas [][]string) float64 {
	if len(probas) == 0 {
		return 0
	}

	pair := probas[0]
	if len(pair) < 2 {
		return 0
	}

	raw := strings.TrimSpace(pair[1])
	if p, err := strconv.ParseFloat(raw, 64); err == nil && p >= 0 {
		return p
	}

	// Some dumps carry the probability embedded in repr-style strings;
	// fall back to the first float-looking substring.
	if m := floatRegex.FindString(raw); m != "" {
		if p, err := strconv.ParseFloat(m, 64); err == nil {
			return p
		}
	}

	return 0
}

// ParseQuoteDate parses the timestamp formats seen in Quotebank dumps.
// Returns the zero time when nothing matches.
func ParseQuoteDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts
		}
	}

	return time.Time{}
}

// YearOf extracts the year used for per-year bucketing. Zero-time dates map
// to year 0, which aggregations skip.
func YearOf(ts time.Time) int {
	if ts.IsZero() {
		return 0
	}
	return ts.Year()
}

// BuildQuoteID hashes the most stable fields to form deterministic IDs for
// records that arrive without a quoteID.
func BuildQuoteID(quotation, speaker string, ts time.Time) string {
	s := sha1.Sum([]byte(quotation + "|" + speaker + "|" + ts.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(s[:])
}
