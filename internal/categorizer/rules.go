package categorizer

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// ruleFile is the on-disk shape of a rule table:
//
//	fallback: Others
//	rules:
//	  - category: Food
//	    keywords: [food, coffee, "*grocer*"]
type ruleFile struct {
	Fallback string `mapstructure:"fallback"`
	Rules    []Rule `mapstructure:"rules"`
}

// LoadRules reads a rule table from a YAML, JSON or TOML file (chosen by
// extension). An omitted fallback means Others.
func LoadRules(path string) (*Categorizer, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("fallback", string(models.CategoryOthers))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading category rules %s: %w", path, err)
	}

	var f ruleFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decoding category rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("category rules %s: no rules defined", path)
	}

	fallback, err := models.ParseCategory(f.Fallback)
	if err != nil {
		return nil, fmt.Errorf("category rules %s: %w", path, err)
	}
	for i := range f.Rules {
		c, err := models.ParseCategory(string(f.Rules[i].Category))
		if err != nil {
			return nil, fmt.Errorf("category rules %s: rule %d: %w", path, i, err)
		}
		f.Rules[i].Category = c
	}

	return NewWithRules(f.Rules, fallback)
}

// LoadOrDefault returns the rules at path, or the built-in table when path is empty.
func LoadOrDefault(path string) (*Categorizer, error) {
	if path == "" {
		return New(), nil
	}
	return LoadRules(path)
}
