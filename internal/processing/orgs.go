package processing

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// A capitalized run ending in one of these words is treated as an
// organization name ("The Boring Company", "Morgan Stanley Bank").
var orgSuffixes = map[string]struct{}{
	"inc": {}, "corp": {}, "ltd": {}, "llc": {}, "plc": {}, "gmbh": {},
	"co": {}, "company": {}, "corporation": {}, "motors": {}, "airlines": {},
	"technologies": {}, "industries": {}, "university": {}, "institute": {},
	"administration": {}, "agency": {}, "association": {}, "bank": {},
	"group": {}, "labs": {}, "foundation": {}, "commission": {},
	"committee": {}, "department": {}, "ministry": {}, "party": {},
	"union": {}, "league": {}, "times": {}, "post": {},
}

// Connectors may appear inside a name but never start or end one.
var orgConnectors = map[string]struct{}{
	"of": {}, "for": {}, "and": {}, "the": {}, "de": {}, "&": {},
}

// Well-known organizations recognized without a suffix. Keys are lowercase.
var defaultOrgs = []string{
	"tesla", "spacex", "solarcity", "neuralink", "openai", "paypal",
	"nasa", "sec", "faa", "fbi", "epa", "united nations", "european union",
	"twitter", "google", "apple", "amazon", "facebook", "microsoft",
	"boeing", "ford", "toyota", "general motors", "daimler", "bmw",
	"reuters", "bloomberg", "cnn", "bbc", "wall street journal",
	"new york times",
}

// OrgExtractor finds organization mentions in quotations. It is a
// rule-based stand-in for statistical NER: capitalized runs qualified by a
// suffix word or by a gazetteer lookup.
type OrgExtractor struct {
	known map[string]struct{}
}

// NewOrgExtractor builds an extractor with the default gazetteer plus any
// extra names (case-insensitive).
func NewOrgExtractor(extra ...string) *OrgExtractor {
	known := make(map[string]struct{}, len(defaultOrgs)+len(extra))
	for _, name := range defaultOrgs {
		known[name] = struct{}{}
	}
	for _, name := range extra {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			known[name] = struct{}{}
		}
	}
	return &OrgExtractor{known: known}
}

// Extract returns organization mentions in order of first appearance. A
// quote naming the same organization twice yields one entry.
func (e *OrgExtractor) Extract(text string) []string {
	if text == "" {
		return nil
	}

	var (
		run  []string
		out  []string
		seen = make(map[string]struct{})
	)

	emit := func(name string) {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}

	flush := func() {
		run = trimConnectors(run)
		if len(run) == 0 {
			return
		}
		e.match(run, emit)
		run = nil
	}

	tokens := words.FromString(text)
	for tokens.Next() {
		tok := strings.TrimSpace(tokens.Value())
		if tok == "" {
			continue
		}

		switch {
		case nameLike(tok):
			run = append(run, tok)
		case len(run) > 0 && isConnector(tok):
			run = append(run, tok)
		default:
			flush()
		}
	}
	flush()

	return out
}

// match reports organizations inside one capitalized run: the whole run when
// it ends in a suffix word, otherwise the longest gazetteer sub-spans.
func (e *OrgExtractor) match(run []string, emit func(string)) {
	last := strings.ToLower(run[len(run)-1])
	if _, ok := orgSuffixes[last]; ok && len(run) >= 2 {
		emit(strings.Join(run, " "))
		return
	}

	for i := 0; i < len(run); {
		matched := 0
		for j := len(run); j > i; j-- {
			span := strings.ToLower(strings.Join(run[i:j], " "))
			if _, ok := e.known[span]; ok {
				matched = j
				break
			}
		}
		if matched == 0 {
			i++
			continue
		}
		emit(strings.Join(run[i:matched], " "))
		i = matched
	}
}

// trimConnectors drops trailing connectors so "Bank of" never ends a name.
// Leading ones stay: "The Boring Company" keeps its article.
func trimConnectors(run []string) []string {
	for len(run) > 0 && isConnector(run[len(run)-1]) {
		run = run[:len(run)-1]
	}
	return run
}

func isConnector(tok string) bool {
	_, ok := orgConnectors[strings.ToLower(tok)]
	return ok
}

func nameLike(tok string) bool {
	r := []rune(tok)
	return len(r) > 0 && unicode.IsUpper(r[0])
}
