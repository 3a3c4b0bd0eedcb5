// Package classifier assigns a repository to one of the fixed healthcare
// categories by keyword matching on its name, description and topics.
package classifier

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is one of the fixed classification labels.
type Category string

const (
	SIMRS          Category = "SIMRS"
	Obat           Category = "Obat"
	Kardiovaskular Category = "Kardiovaskular"
	General        Category = "General"
)

// Rule maps a keyword set to the category it selects.
type Rule struct {
	Category Category
	Keywords []string
}

// Rules are evaluated in order and the first match wins. Keywords are
// already case folded.
var Rules = []Rule{
	{Category: SIMRS, Keywords: []string{"simrs", "hospital information system", "rekam medis", " his "}},
	{Category: Obat, Keywords: []string{"obat", "drug", "pharmaceutical", "farmasi", "medicine"}},
	{Category: Kardiovaskular, Keywords: []string{"kardi", "cardio", "heart", "ecg", "ekg"}},
}

// Categories lists every label in priority order, General last.
func Categories() []Category {
	out := make([]Category, 0, len(Rules)+1)
	for _, r := range Rules {
		out = append(out, r.Category)
	}
	return append(out, General)
}

// Normalize builds the classification text for a repository.
func Normalize(name, description string, topics []string) string {
	text := name + " " + description + " " + strings.Join(topics, ",")
	return cases.Fold().String(text)
}

// Classify returns the category of already normalized text.
func Classify(text string) Category {
	for _, r := range Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Category
			}
		}
	}
	return General
}

// ClassifyRepository normalizes and classifies in one step.
func ClassifyRepository(name, description string, topics []string) Category {
	return Classify(Normalize(name, description, topics))
}
