package model

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LinguaDetector implements LanguageDetector with an offline statistical
// model, so detection works without any host model being available.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// defaultLanguages keeps the loaded n-gram models small while covering the
// languages legal documents are commonly served in.
var defaultLanguages = []lingua.Language{
	lingua.English, lingua.Spanish, lingua.French, lingua.German,
	lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Polish,
	lingua.Swedish, lingua.Finnish, lingua.Japanese, lingua.Chinese,
}

// NewLinguaDetector builds a detector over the given languages, or the
// default set when none are provided.
func NewLinguaDetector(langs ...lingua.Language) *LinguaDetector {
	if len(langs) == 0 {
		langs = defaultLanguages
	}
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		WithLowAccuracyMode().
		Build()
	return &LinguaDetector{detector: d}
}

func (d *LinguaDetector) Detect(text string) []Detection {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	values := d.detector.ComputeLanguageConfidenceValues(text)
	out := make([]Detection, 0, len(values))
	for _, cv := range values {
		out = append(out, Detection{
			Code:       strings.ToLower(cv.Language().IsoCode639_1().String()),
			Confidence: cv.Value(),
		})
	}
	return out
}
