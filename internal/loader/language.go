package loader

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

const languageSampleRunes = 2000

type LanguageDetector interface {
	DetectLanguage(text string) (string, bool)
}

// LinguaDetector returns ISO 639-1 codes. Language models are loaded on first
// use.
type LinguaDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{}
}

func (d *LinguaDetector) DetectLanguage(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.German,
				lingua.French,
				lingua.Spanish,
				lingua.Portuguese,
				lingua.Italian,
				lingua.Dutch,
				lingua.Polish,
				lingua.Russian,
				lingua.Ukrainian,
				lingua.Turkish,
				lingua.Indonesian,
				lingua.Hindi,
				lingua.Arabic,
				lingua.Chinese,
				lingua.Japanese,
				lingua.Korean,
			).
			WithLowAccuracyMode().
			Build()
	})

	lang, ok := d.detector.DetectLanguageOf(truncate(text, languageSampleRunes))
	if !ok {
		return "", false
	}

	return strings.ToLower(lang.IsoCode639_1().String()), true
}
