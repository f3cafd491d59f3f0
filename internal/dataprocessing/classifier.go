package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"brandsales/pkg/contracts/domain"
)

// FallbackBrand is the label of SKUs no rule matches
const FallbackBrand = "Other"

// DefaultBrandRules returns the built-in SKU prefix rules
func DefaultBrandRules() []domain.BrandRule {
	return []domain.BrandRule{
		{Pattern: `^TH_`, Label: "Theonia EU"},
		{Pattern: `^EU-PG-`, Label: "PupGrade EU"},
		{Pattern: `^EU-PC-B-`, Label: "Cosy House EU"},
	}
}

type compiledRule struct {
	re    *regexp.Regexp
	label string
}

// BrandClassifier maps SKUs to brand labels using an ordered rule list.
// It is immutable after construction and safe for concurrent use.
type BrandClassifier struct {
	rules []compiledRule
}

// NewBrandClassifier compiles the rules in order. Patterns are regular
// expressions anchored at the start of the SKU; a leading '^' is added when the
// pattern lacks one. Matching is case-sensitive.
func NewBrandClassifier(rules []domain.BrandRule) (*BrandClassifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		if strings.TrimSpace(rule.Label) == "" {
			return nil, fmt.Errorf("brand rule %d (%q) has an empty label", i, rule.Pattern)
		}
		if rule.Pattern == "" {
			return nil, fmt.Errorf("brand rule %d (%s) has an empty pattern", i, rule.Label)
		}

		pattern := rule.Pattern
		if !strings.HasPrefix(pattern, "^") {
			pattern = "^(?:" + pattern + ")"
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("brand rule %d (%s): invalid pattern %q: %w", i, rule.Label, rule.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, label: rule.Label})
	}
	return &BrandClassifier{rules: compiled}, nil
}

// Classify returns the label of the first rule matching the SKU, or
// FallbackBrand when none does.
func (c *BrandClassifier) Classify(sku string) string {
	for _, rule := range c.rules {
		if rule.re.MatchString(sku) {
			return rule.label
		}
	}
	return FallbackBrand
}

// Rules returns the number of rules the classifier evaluates
func (c *BrandClassifier) Rules() int {
	return len(c.rules)
}
