package location

import (
	"log/slog"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Recognizer is the optional statistical NER capability. Implementations
// return candidate place names, lower-cased, in document order.
type Recognizer interface {
	Places(text string) []string
}

// NewRecognizer returns the statistical recognizer backed by prose.
func NewRecognizer() Recognizer {
	return proseRecognizer{}
}

// NoopRecognizer is the "capability unavailable" variant: it recognizes
// nothing, leaving extraction to the gazetteer and pattern passes.
type NoopRecognizer struct{}

func (NoopRecognizer) Places(string) []string { return nil }

type proseRecognizer struct{}

func (proseRecognizer) Places(text string) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		slog.Warn("NER document analysis failed", "error", err)
		return nil
	}

	var places []string
	for _, ent := range doc.Entities() {
		switch ent.Label {
		case "GPE", "LOC", "FACILITY":
			place := strings.ToLower(strings.TrimSpace(ent.Text))
			if len(place) > 2 {
				places = append(places, place)
			}
		}
	}
	return places
}
