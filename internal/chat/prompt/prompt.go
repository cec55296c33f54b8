// Package prompt composes the single synthesis instruction sent to the
// completion service. Composition is pure: the same message, matches, and
// language tag always produce a byte-identical prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/knowbot/knowledge-chatbot/internal/chat/retriever"
)

// Language tags that get the local-language instruction. tl is Tagalog,
// ceb is Cebuano/Bisaya.
var localLanguages = map[string]bool{
	"tl":  true,
	"ceb": true,
}

const (
	localInstruction   = "Respond in the same language (Tagalog or Bisaya) using natural, conversational phrasing."
	defaultInstruction = "Respond in English, naturally and concisely."
)

// QA is one question/answer pair offered to the model.
type QA struct {
	Question string
	Answer   string
}

// Prompt is the synthesis instruction, built once per request and consumed
// exactly once by the completion gateway.
type Prompt struct {
	UserMessage         string
	Pairs               []QA
	LanguageInstruction string
}

// Compose builds a Prompt from the user message, retrieved matches (in
// retrieval order), and the detected language tag.
func Compose(userMessage string, matches []retriever.Match, languageTag string) Prompt {
	pairs := make([]QA, 0, len(matches))
	for _, m := range matches {
		pairs = append(pairs, QA{Question: m.Record.Question, Answer: m.Record.Answer})
	}

	instruction := defaultInstruction
	if localLanguages[languageTag] {
		instruction = localInstruction
	}

	return Prompt{
		UserMessage:         userMessage,
		Pairs:               pairs,
		LanguageInstruction: instruction,
	}
}

// Text renders the full instruction block. The persona requirement is hard:
// the model answers as the knowledge owner in first person and must never
// reveal that a knowledge base exists.
func (p Prompt) Text() string {
	var qa strings.Builder
	for i, pair := range p.Pairs {
		if i > 0 {
			qa.WriteString("\n")
		}
		fmt.Fprintf(&qa, "Q: %s\nA: %s", pair.Question, pair.Answer)
	}

	return fmt.Sprintf(
		"The user asked: '%s'.\n\n"+
			"Here are possible Q/A pairs from the knowledge base:\n%s\n\n"+
			"Choose the most relevant answer and respond in first person. "+
			"%s Do not mention the knowledge base or explain the source.",
		p.UserMessage, qa.String(), p.LanguageInstruction,
	)
}
