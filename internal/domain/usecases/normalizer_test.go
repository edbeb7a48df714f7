package usecases

import "testing"

func TestNormalize_ExpandsAbbreviations(t *testing.T) {
	got := Normalize("yg dgn utk")
	want := "yang dengan untuk"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_WholeWordOnly(t *testing.T) {
	// Words merely containing an abbreviation must stay untouched.
	cases := []string{"drastis", "padukan", "ygterus", "spontan"}
	for _, in := range cases {
		if got := Normalize(in); got != in {
			t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalize_CaseInsensitive(t *testing.T) {
	if got := Normalize("YG Dgn UTK"); got != "yang dengan untuk" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_ExpandsAcronym(t *testing.T) {
	got := Normalize("apa itu HCTPA?")
	want := "apa itu Human Capital Technology People Analytics"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_PunctuationBecomesSeparator(t *testing.T) {
	got := Normalize("halo, dunia! (tes)")
	if got != "halo dunia tes" {
		t.Errorf("got %q", got)
	}
	// Sentence-ending periods survive.
	if got := Normalize("kalimat pertama. kalimat kedua."); got != "kalimat pertama. kalimat kedua." {
		t.Errorf("periods should be preserved, got %q", got)
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	if got := Normalize("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_NonTextCharacters(t *testing.T) {
	// Emoji and symbols are neutralized, never panic.
	if got := Normalize("harga 💰 100% pasti"); got != "harga 100 pasti" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_KeepsAccentedLetters(t *testing.T) {
	// PDF-extracted text regularly carries accented letters; they are
	// word characters, not separators.
	if got := Normalize("café resumé Ümit"); got != "café resumé Ümit" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("biaya €50 per aksén!"); got != "biaya 50 per aksén" {
		t.Errorf("got %q", got)
	}
	// An abbreviation fused to an accented letter is one word, not a
	// whole-word match.
	if got := Normalize("dré ygé"); got != "dré ygé" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_AbbreviationWithTrailingPeriod(t *testing.T) {
	got := Normalize("lihat bab dua dst. untuk detail")
	want := "lihat bab dua dan seterusnya. untuk detail"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"yg dgn utk tsb dll dst dsb spt krn pd dr knp",
		"apa itu HCTPA? jelaskan dll yg relevan!",
		"  teks   dengan\tspasi aneh & simbol #1  ",
		"café resumé dst. Ümit",
		"kalimat biasa tanpa singkatan.",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
