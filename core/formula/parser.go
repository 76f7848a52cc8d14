package formula

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"oiltrading/core/money"
)

// The recognizer is an ordered cascade of (pattern, build) rules. The
// first pattern that matches wins; the ordering is a deliberate
// tie-break between the more and less explicit formula shapes, so the
// rules live in one auditable list rather than scattered conditionals.

const (
	methodPat = `(AVG|MIN|MAX|FIRST|LAST|WAVG|MEDIAN|MODE)`
	// Index codes may lead with digits (380CST) but must contain a letter
	// so a bare amount is never mistaken for an index.
	indexPat  = `([A-Z0-9_.\-]*[A-Z][A-Z0-9_.\-]*)`
	amountPat = `(\d+(?:\.\d+)?)`
	ccyPat    = `([A-Z]{3})`
	unitPat   = `(?:\s*/\s*([A-Z]+))?`
)

type parseRule struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string) (Specification, error)
}

var parseRules = []parseRule{
	{
		// METHOD(INDEX) ± AMOUNT CCY[/UNIT]
		name: "aggregate with adjustment",
		pattern: regexp.MustCompile(`(?i)^` + methodPat + `\s*\(\s*` + indexPat + `\s*\)\s*([+-])\s*` +
			amountPat + `\s+` + ccyPat + unitPat + `$`),
		build: func(m []string) (Specification, error) {
			method, err := ParseAggregationMethod(m[1])
			if err != nil {
				return Specification{}, err
			}
			adj, err := money.FromString(m[4], m[5])
			if err != nil {
				return Specification{}, err
			}
			return NewIndex(m[2], method, &adj, m[3] == "-", m[6])
		},
	},
	{
		// INDEX ± AMOUNT CCY[/UNIT], aggregation defaults to AVG
		name: "simple index with adjustment",
		pattern: regexp.MustCompile(`(?i)^` + indexPat + `\s*([+-])\s*` +
			amountPat + `\s+` + ccyPat + unitPat + `$`),
		build: func(m []string) (Specification, error) {
			adj, err := money.FromString(m[3], m[4])
			if err != nil {
				return Specification{}, err
			}
			return NewIndex(m[1], AggAVG, &adj, m[2] == "-", m[5])
		},
	},
	{
		// METHOD(INDEX)
		name:    "aggregate without adjustment",
		pattern: regexp.MustCompile(`(?i)^` + methodPat + `\s*\(\s*` + indexPat + `\s*\)$`),
		build: func(m []string) (Specification, error) {
			method, err := ParseAggregationMethod(m[1])
			if err != nil {
				return Specification{}, err
			}
			return NewIndex(m[2], method, nil, false, "")
		},
	},
	{
		// AMOUNT CCY[/UNIT]
		name:    "fixed price",
		pattern: regexp.MustCompile(`(?i)^` + amountPat + `\s+` + ccyPat + unitPat + `$`),
		build: func(m []string) (Specification, error) {
			price, err := decimal.NewFromString(m[1])
			if err != nil {
				return Specification{}, err
			}
			return NewFixed(price, m[2], m[3])
		},
	},
}

// Parse classifies formula text into a specification. Parsing is total:
// text matched by no rule, or whose matched rule fails construction,
// degrades to a Custom specification whose evaluation fails later.
func Parse(text string) Specification {
	trimmed := strings.TrimSpace(text)
	for _, rule := range parseRules {
		m := rule.pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		spec, err := rule.build(m)
		if err != nil {
			break
		}
		spec.raw = text
		return spec
	}
	return NewCustom(text)
}
