package processing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/speakerlens/quote-radar/internal/processing"
)

func TestProbability(t *testing.T) {
	tests := []struct {
		name   string
		probas [][]string
		want   float64
	}{
		{name: "empty", probas: nil, want: 0},
		{name: "top pair", probas: [][]string{{"Elon Musk", "0.8971"}, {"None", "0.1029"}}, want: 0.8971},
		{name: "short pair", probas: [][]string{{"Elon Musk"}}, want: 0},
		{name: "unparseable", probas: [][]string{{"Elon Musk", "n/a"}}, want: 0},
		{name: "embedded float", probas: [][]string{{"Elon Musk", "p=0.75"}}, want: 0.75},
		{name: "padded", probas: [][]string{{"Elon Musk", " 0.5 "}}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, processing.Probability(tt.probas), 1e-9)
		})
	}
}

func TestParseQuoteDate(t *testing.T) {
	ts := processing.ParseQuoteDate("2015-07-31 18:30:58")
	require.False(t, ts.IsZero())
	require.Equal(t, 2015, ts.Year())
	require.Equal(t, time.July, ts.Month())
	require.Equal(t, 31, ts.Day())
	require.Equal(t, 18, ts.Hour())

	dateOnly := processing.ParseQuoteDate("2020-01-15")
	require.False(t, dateOnly.IsZero())
	require.Equal(t, 2020, dateOnly.Year())

	rfc := processing.ParseQuoteDate("2017-03-04T05:06:07Z")
	require.False(t, rfc.IsZero())
	require.Equal(t, 2017, rfc.Year())

	require.True(t, processing.ParseQuoteDate("").IsZero())
	require.True(t, processing.ParseQuoteDate("not a date").IsZero())
}

func TestYearOf(t *testing.T) {
	require.Equal(t, 0, processing.YearOf(time.Time{}))
	require.Equal(t, 2016, processing.YearOf(time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBuildQuoteID(t *testing.T) {
	ts := time.Date(2019, 2, 3, 4, 5, 6, 0, time.UTC)
	id1 := processing.BuildQuoteID("a quotation", "Elon Musk", ts)
	id2 := processing.BuildQuoteID("a quotation", "Elon Musk", ts)
	require.NotEmpty(t, id1)
	require.Equal(t, id1, id2)

	other := processing.BuildQuoteID("a quotation", "Someone Else", ts)
	require.NotEqual(t, id1, other)
}
