package processing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/speakerlens/quote-radar/internal/processing"
)

func TestExtractOrgs(t *testing.T) {
	ex := processing.NewOrgExtractor()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "no orgs", text: "we are going to the beach tomorrow", want: nil},
		{
			name: "gazetteer hit",
			text: "Tesla is going to build another factory",
			want: []string{"Tesla"},
		},
		{
			name: "suffix run",
			text: "I think The Boring Company will dig faster than anyone",
			want: []string{"The Boring Company"},
		},
		{
			name: "multiple orgs",
			text: "We moved money from PayPal to SpaceX and Tesla",
			want: []string{"PayPal", "SpaceX", "Tesla"},
		},
		{
			name: "duplicate mention collapses",
			text: "Tesla, Tesla, and only Tesla",
			want: []string{"Tesla"},
		},
		{
			name: "multiword gazetteer",
			text: "He quoted the New York Times on that",
			want: []string{"New York Times"},
		},
		{
			name: "trailing connector dropped",
			text: "SpaceX and the rest of the industry",
			want: []string{"SpaceX"},
		},
		{
			name: "plain capitalized words ignored",
			text: "Monday was when Sarah spoke",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ex.Extract(tt.text))
		})
	}
}

func TestExtractOrgsExtraGazetteer(t *testing.T) {
	ex := processing.NewOrgExtractor("Gigafactory Berlin")

	got := ex.Extract("Production at Gigafactory Berlin doubled")
	require.Equal(t, []string{"Gigafactory Berlin"}, got)

	// The default gazetteer does not know it.
	require.Nil(t, processing.NewOrgExtractor().Extract("Production at Gigafactory Berlin doubled"))
}
