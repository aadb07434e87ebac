package services

import (
	"time"

	"github.com/ryakubu/auto-categorize-app/internal/categorizer"
	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// suggestionService answers category suggestions from a categorizer.
type suggestionService struct {
	categorizer *categorizer.Categorizer
	hintTTL     time.Duration
}

// NewSuggestionService creates a new SuggestionServicer. hintTTL is how long
// clients should show the "auto-categorized" hint.
func NewSuggestionService(c *categorizer.Categorizer, hintTTL time.Duration) SuggestionServicer {
	return &suggestionService{categorizer: c, hintTTL: hintTTL}
}

// Suggest categorizes a description typed into the expense form.
func (s *suggestionService) Suggest(description string, editing bool) Suggestion {
	m := s.categorizer.Explain(description)
	return Suggestion{
		Category:       m.Category,
		MatchedKeyword: m.Keyword,
		AutoApply:      categorizer.ShouldAutoApply(description, editing),
		HintTTLMs:      s.hintTTL.Milliseconds(),
	}
}

// SuggestBatch categorizes descriptions in order. Batch callers are never
// editing a form, so AutoApply follows the length rule alone.
func (s *suggestionService) SuggestBatch(descriptions []string) []Suggestion {
	out := make([]Suggestion, 0, len(descriptions))
	for _, d := range descriptions {
		sg := s.Suggest(d, false)
		sg.Description = d
		out = append(out, sg)
	}
	return out
}

// Categories returns the category enumeration in declared order.
func (s *suggestionService) Categories() []models.Category {
	return models.AllCategories()
}
