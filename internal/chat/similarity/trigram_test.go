package similarity

import "testing"

func TestTrigramScore_Identical(t *testing.T) {
	s := NewTrigram()
	if got := s.Score("what are your hours", "what are your hours"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %f", got)
	}
}

func TestTrigramScore_CaseInsensitive(t *testing.T) {
	s := NewTrigram()
	if got := s.Score("HELLO THERE", "hello there"); got != 1.0 {
		t.Errorf("case variants should score 1.0, got %f", got)
	}
}

func TestTrigramScore_Disjoint(t *testing.T) {
	s := NewTrigram()
	if got := s.Score("hello", "world"); got != 0 {
		t.Errorf("disjoint strings should score 0, got %f", got)
	}
}

func TestTrigramScore_TypoTolerance(t *testing.T) {
	// User phrasing rarely matches stored questions verbatim; typos and
	// dropped words must still clear the relevance floor.
	s := NewTrigram()
	got := s.Score("whats ur hours", "what are your hours")
	if got <= 0.1 {
		t.Errorf("typo variant should clear the 0.1 floor, got %f", got)
	}
	if got >= 1.0 {
		t.Errorf("typo variant should not score a perfect match, got %f", got)
	}
}

func TestTrigramScore_WordOrder(t *testing.T) {
	s := NewTrigram()
	if got := s.Score("hours your", "your hours"); got != 1.0 {
		t.Errorf("word order should not matter, got %f", got)
	}
}

func TestTrigramScore_Symmetric(t *testing.T) {
	s := NewTrigram()
	a := s.Score("do you ship abroad", "shipping information")
	b := s.Score("shipping information", "do you ship abroad")
	if a != b {
		t.Errorf("score should be symmetric: %f vs %f", a, b)
	}
}

func TestTrigramScore_DegenerateInput(t *testing.T) {
	s := NewTrigram()
	tests := []struct {
		name             string
		query, candidate string
	}{
		{"empty query", "", "what are your hours"},
		{"empty candidate", "hello", ""},
		{"both empty", "", ""},
		{"punctuation only", "?!...", "what are your hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.query, tt.candidate); got != 0 {
				t.Errorf("expected 0, got %f", got)
			}
		})
	}
}

func TestTrigramSet_Padding(t *testing.T) {
	set := trigramSet("cat")
	want := []string{"  c", " ca", "cat", "at "}
	if len(set) != len(want) {
		t.Fatalf("expected %d trigrams, got %d", len(want), len(set))
	}
	for _, g := range want {
		if _, ok := set[g]; !ok {
			t.Errorf("missing trigram %q", g)
		}
	}
}
