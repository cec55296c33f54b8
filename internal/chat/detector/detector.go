// Package detector classifies the query language so the prompt composer can
// pick a language instruction. Detection on short or ambiguous text is
// inherently unreliable, so the detector never fails: anything it cannot
// classify comes back as English. Misdetection degrades prompt wording, not
// pipeline correctness.
package detector

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DefaultTag is returned whenever classification cannot run or is
// inconclusive.
const DefaultTag = "en"

// Detector wraps a lingua language classifier over a fixed language set.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a Detector. The language set is deliberately small: the
// audience writes English or Tagalog, and a narrow set keeps short-text
// classification usable.
func New() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Tagalog,
			lingua.Spanish,
			lingua.French,
			lingua.German,
		).
		Build()
	return &Detector{detector: d}
}

// Detect returns a lowercase ISO 639-1 tag for text, or DefaultTag when the
// input is empty or the classifier is not confident about any language.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultTag
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return DefaultTag
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
