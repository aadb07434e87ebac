// Package categorizer suggests an expense category from free-text
// descriptions using an ordered keyword table. The first rule with a
// matching keyword wins, so the order of the table is significant:
// "buy coffee" is Food, not Shopping, because Food is listed first.
package categorizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ryanuber/go-glob"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// MinAutoApplyLength is the description length (in characters) that must
// be exceeded before a suggestion is applied to a new expense.
const MinAutoApplyLength = 3

// Rule maps a set of keywords to a category. A keyword containing '*' is a
// glob matched against the whole lower-cased description; any other keyword
// matches as a substring.
type Rule struct {
	Category models.Category `mapstructure:"category" json:"category"`
	Keywords []string        `mapstructure:"keywords" json:"keywords"`
}

// Match describes how a suggestion was reached.
type Match struct {
	Category models.Category `json:"category"`
	Keyword  string          `json:"matched_keyword,omitempty"`
	// RuleIndex is the position of the matching rule, or -1 for the fallback.
	RuleIndex int `json:"rule_index"`
}

// Categorizer evaluates an ordered rule table. It is immutable after
// construction and safe for concurrent use.
type Categorizer struct {
	rules    []Rule
	fallback models.Category
}

// DefaultRules returns the built-in rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Category: models.CategoryFood, Keywords: []string{"food", "restaurant", "coffee", "lunch", "dinner"}},
		{Category: models.CategoryTransport, Keywords: []string{"uber", "taxi", "bus", "train", "gas"}},
		{Category: models.CategoryUtilities, Keywords: []string{"electric", "water", "internet", "phone"}},
		{Category: models.CategoryShopping, Keywords: []string{"store", "amazon", "buy", "purchase"}},
		{Category: models.CategoryEntertainment, Keywords: []string{"movie", "game", "concert", "show"}},
		{Category: models.CategoryHealthcare, Keywords: []string{"doctor", "pharmacy", "hospital", "medicine"}},
	}
}

// New returns a Categorizer over DefaultRules with Others as the fallback.
func New() *Categorizer {
	c, err := NewWithRules(DefaultRules(), models.CategoryOthers)
	if err != nil {
		panic(err)
	}
	return c
}

// NewWithRules validates and copies rules. Keywords are lower-cased and
// trimmed; a rule must name a known category and keep at least one keyword.
func NewWithRules(rules []Rule, fallback models.Category) (*Categorizer, error) {
	if !fallback.IsValid() {
		return nil, fmt.Errorf("fallback category %q is not a known category", fallback)
	}

	normalized := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if !r.Category.IsValid() {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): at least one keyword is required", i, r.Category)
		}
		normalized = append(normalized, Rule{Category: r.Category, Keywords: keywords})
	}

	return &Categorizer{rules: normalized, fallback: fallback}, nil
}

// Suggest returns the category for description. It never fails: input that
// matches no rule gets the fallback category.
func (c *Categorizer) Suggest(description string) models.Category {
	return c.Explain(description).Category
}

// Explain is Suggest plus the keyword and rule that produced the answer.
func (c *Categorizer) Explain(description string) Match {
	text := strings.ToLower(description)
	for i, r := range c.rules {
		for _, kw := range r.Keywords {
			if matches(kw, text) {
				return Match{Category: r.Category, Keyword: kw, RuleIndex: i}
			}
		}
	}
	return Match{Category: c.fallback, RuleIndex: -1}
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Fallback is the category returned for unmatched descriptions.
func (c *Categorizer) Fallback() models.Category {
	return c.fallback
}

func matches(keyword, text string) bool {
	if strings.Contains(keyword, glob.GLOB) {
		return glob.Glob(keyword, text)
	}
	return strings.Contains(text, keyword)
}

// ShouldAutoApply reports whether a suggestion may overwrite the category
// field: only while creating an expense, and only once the description is
// longer than MinAutoApplyLength characters. Editing never re-suggests.
func ShouldAutoApply(description string, editing bool) bool {
	if editing {
		return false
	}
	return utf8.RuneCountInString(description) > MinAutoApplyLength
}
