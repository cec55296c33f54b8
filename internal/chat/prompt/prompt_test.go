package prompt

import (
	"strings"
	"testing"

	"github.com/knowbot/knowledge-chatbot/internal/chat/retriever"
	"github.com/knowbot/knowledge-chatbot/internal/knowledge"
)

func match(q, a string, score float64) retriever.Match {
	return retriever.Match{
		Record:     knowledge.Record{Category: "general", Question: q, Answer: a},
		Similarity: score,
	}
}

func TestCompose_QAPairsKeepRetrievalOrder(t *testing.T) {
	matches := []retriever.Match{
		match("what are your hours", "9 to 5", 0.8),
		match("where are you located", "Cebu City", 0.4),
	}
	p := Compose("whats ur hours", matches, "en")

	text := p.Text()
	first := strings.Index(text, "Q: what are your hours\nA: 9 to 5")
	second := strings.Index(text, "Q: where are you located\nA: Cebu City")
	if first == -1 || second == -1 {
		t.Fatalf("Q/A block missing from prompt:\n%s", text)
	}
	if first > second {
		t.Errorf("Q/A pairs should keep retrieval order")
	}
}

func TestCompose_LocalLanguageBranch(t *testing.T) {
	for _, tag := range []string{"tl", "ceb"} {
		t.Run(tag, func(t *testing.T) {
			p := Compose("kumusta ka", []retriever.Match{match("q", "a", 0.5)}, tag)
			if p.LanguageInstruction != localInstruction {
				t.Errorf("tag %q should select the local-language instruction, got %q", tag, p.LanguageInstruction)
			}
		})
	}
}

func TestCompose_DefaultLanguageBranch(t *testing.T) {
	for _, tag := range []string{"en", "es", "fr", ""} {
		t.Run("tag_"+tag, func(t *testing.T) {
			p := Compose("hello", []retriever.Match{match("q", "a", 0.5)}, tag)
			if p.LanguageInstruction != defaultInstruction {
				t.Errorf("tag %q should select the default instruction, got %q", tag, p.LanguageInstruction)
			}
		})
	}
}

func TestCompose_Pure(t *testing.T) {
	matches := []retriever.Match{
		match("what are your hours", "9 to 5", 0.8),
		match("where are you located", "Cebu City", 0.4),
	}
	a := Compose("whats ur hours", matches, "tl").Text()
	b := Compose("whats ur hours", matches, "tl").Text()
	if a != b {
		t.Errorf("identical inputs should produce byte-identical prompts")
	}
}

func TestText_PersonaConstraints(t *testing.T) {
	p := Compose("whats ur hours", []retriever.Match{match("q", "a", 0.5)}, "en")
	text := p.Text()

	for _, want := range []string{
		"The user asked: 'whats ur hours'.",
		"respond in first person",
		"Do not mention the knowledge base or explain the source.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
}
