// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"regexp"
	"strings"
)

// abbreviations maps common Indonesian shorthand to its expansion. The
// order is fixed; expansions are already in canonical (normalized) form
// so Normalize is a fixpoint.
var abbreviations = []struct {
	Abbr string
	Full string
}{
	{"yg", "yang"},
	{"dgn", "dengan"},
	{"utk", "untuk"},
	{"tsb", "tersebut"},
	{"dll", "dan lain lain"},
	{"dst", "dan seterusnya"},
	{"dsb", "dan sebagainya"},
	{"spt", "seperti"},
	{"krn", "karena"},
	{"pd", "pada"},
	{"dr", "dari"},
	{"knp", "kenapa"},
	{"hctpa", "Human Capital Technology People Analytics"},
}

// Everything that is not a letter, digit, underscore, whitespace or a
// period becomes a separator. Unicode letters and digits are word
// characters here; accented text from PDF extraction must survive.
// Sentence-ending periods survive too.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.]`)

var abbrevMap = buildAbbrevMap()

func buildAbbrevMap() map[string]string {
	m := make(map[string]string, len(abbreviations))
	for _, a := range abbreviations {
		m[a.Abbr] = a.Full
	}
	return m
}

// Normalize cleans raw document or query text into the canonical form
// used for chunking, embedding and prompting. Deterministic and pure:
// punctuation collapses to spaces, whitespace runs collapse to one
// space, and whole-word abbreviations expand case-insensitively.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := nonWordRe.ReplaceAllString(text, " ")
	fields := strings.Fields(t)
	for i, f := range fields {
		fields[i] = expandToken(f)
	}
	return strings.Join(fields, " ")
}

// expandToken replaces a whole-word abbreviation with its expansion,
// keeping any surrounding periods ("tsb." expands to "tersebut.").
// Tokenizing first guarantees whole-word boundaries: a longer word
// containing an abbreviation as a substring is never touched.
func expandToken(tok string) string {
	body := strings.TrimLeft(tok, ".")
	lead := tok[:len(tok)-len(body)]
	core := strings.TrimRight(body, ".")
	trail := body[len(core):]
	if full, ok := abbrevMap[strings.ToLower(core)]; ok {
		return lead + full + trail
	}
	return tok
}
