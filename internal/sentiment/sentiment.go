// Package sentiment scores quotation polarity with VADER.
package sentiment

import "github.com/jonreiter/govader"

// Default category thresholds, the conventional VADER cutoffs.
const (
	DefaultNegThreshold = -0.05
	DefaultPosThreshold = 0.05
)

// Analyzer wraps a VADER analyzer together with the thresholds used to
// bucket compound scores into categories.
type Analyzer struct {
	vader        *govader.SentimentIntensityAnalyzer
	negThreshold float64
	posThreshold float64
}

// NewAnalyzer creates an analyzer. Thresholds that do not satisfy
// neg < pos fall back to the defaults.
func NewAnalyzer(negThreshold, posThreshold float64) *Analyzer {
	if negThreshold >= posThreshold {
		negThreshold = DefaultNegThreshold
		posThreshold = DefaultPosThreshold
	}
	return &Analyzer{
		vader:        govader.NewSentimentIntensityAnalyzer(),
		negThreshold: negThreshold,
		posThreshold: posThreshold,
	}
}

// Score returns the VADER compound polarity of the text, in [-1, 1].
func (a *Analyzer) Score(text string) float64 {
	return a.vader.PolarityScores(text).Compound
}

// Categorize buckets a compound score: -1 at or below the negative
// threshold, +1 at or above the positive threshold, 0 between.
func (a *Analyzer) Categorize(score float64) int {
	switch {
	case score <= a.negThreshold:
		return -1
	case score >= a.posThreshold:
		return 1
	default:
		return 0
	}
}
