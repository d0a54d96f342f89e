package queryfilter

import (
	"context"
	_ "embed"
	"regexp"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/nearbite/nearbite/internal/model"
)

//go:embed tables.yaml
var tablesYAML []byte

// Extractor classifies a query into search keywords. Implementations never
// invent values: absent fields stay empty.
type Extractor interface {
	Extract(ctx context.Context, text string) (model.Keywords, error)
}

// tableEntry is one dictionary row: a canonical name and its regex alternatives.
type tableEntry struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type tables struct {
	Attributes []tableEntry `yaml:"attributes"`
	PlaceTypes []tableEntry `yaml:"place_types"`
	Regions    []string     `yaml:"regions"`
}

type compiledEntry struct {
	name     string
	patterns []*regexp.Regexp
}

// RuleExtractor scans the curated pattern tables. It is safe for concurrent
// use and never fails.
type RuleExtractor struct {
	attributes []compiledEntry
	placeTypes []compiledEntry
	regions    []string
}

var (
	defaultExtractor *RuleExtractor
	defaultOnce      sync.Once
	defaultErr       error
)

// NewRuleExtractor compiles the embedded pattern tables.
func NewRuleExtractor() (*RuleExtractor, error) {
	var t tables
	if err := yaml.Unmarshal(tablesYAML, &t); err != nil {
		return nil, eris.Wrap(err, "queryfilter: parse tables")
	}

	e := &RuleExtractor{regions: t.Regions}
	var err error
	if e.attributes, err = compileEntries(t.Attributes); err != nil {
		return nil, err
	}
	if e.placeTypes, err = compileEntries(t.PlaceTypes); err != nil {
		return nil, err
	}
	return e, nil
}

// DefaultRuleExtractor returns the shared extractor built from the embedded
// tables.
func DefaultRuleExtractor() (*RuleExtractor, error) {
	defaultOnce.Do(func() {
		defaultExtractor, defaultErr = NewRuleExtractor()
	})
	return defaultExtractor, defaultErr
}

func compileEntries(entries []tableEntry) ([]compiledEntry, error) {
	out := make([]compiledEntry, 0, len(entries))
	for _, e := range entries {
		ce := compiledEntry{name: e.Name}
		for _, p := range e.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, eris.Wrapf(err, "queryfilter: compile pattern %q for %q", p, e.Name)
			}
			ce.patterns = append(ce.patterns, re)
		}
		out = append(out, ce)
	}
	return out, nil
}

// fallbackPlacePattern downgrades generic restaurant words to the catch-all
// place type when no dictionary entry matched.
var fallbackPlacePattern = regexp.MustCompile(`식당|음식점|레스토랑`)

// Extract scans the pattern tables. For attributes every entry may match
// once; for place types the first match wins.
func (e *RuleExtractor) Extract(_ context.Context, text string) (model.Keywords, error) {
	var kw model.Keywords

	for _, entry := range e.attributes {
		for _, re := range entry.patterns {
			if re.MatchString(text) {
				kw.Attributes = append(kw.Attributes, entry.name)
				break
			}
		}
	}

	for _, entry := range e.placeTypes {
		matched := false
		for _, re := range entry.patterns {
			if re.MatchString(text) {
				matched = true
				break
			}
		}
		if matched {
			kw.PlaceType = entry.name
			break
		}
	}
	if kw.PlaceType == "" && fallbackPlacePattern.MatchString(text) {
		kw.PlaceType = "맛집"
	}

	for _, region := range e.regions {
		if idx := strings.Index(text, region); idx >= 0 {
			kw.Location = region
			// Keep the station suffix when the user typed it.
			if strings.HasPrefix(text[idx+len(region):], "역") {
				kw.Location = region + "역"
			}
			break
		}
	}

	return kw, nil
}
