package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/width"
)

// Telco carriers recognized by the discount catalog.
const (
	TelcoSKT = "SKT"
	TelcoKT  = "KT"
	TelcoLGU = "LG U+"
)

// telcoSynonyms folds carrier name variants into the canonical form.
var telcoSynonyms = map[string]string{
	"SKT":      TelcoSKT,
	"SK텔레콤":    TelcoSKT,
	"SK 텔레콤":   TelcoSKT,
	"에스케이텔레콤":  TelcoSKT,
	"T멤버십":     TelcoSKT,
	"KT":       TelcoKT,
	"케이티":      TelcoKT,
	"KT멤버십":    TelcoKT,
	"LG U+":    TelcoLGU,
	"LGU+":     TelcoLGU,
	"LG유플러스":   TelcoLGU,
	"LG 유플러스":  TelcoLGU,
	"유플러스":     TelcoLGU,
	"엘지유플러스":   TelcoLGU,
	"U+멤버십":    TelcoLGU,
}

// NormalizeTelco maps a carrier name variant to its canonical form.
// Unknown carriers are upper-cased and returned as-is; empty input stays empty.
func NormalizeTelco(s string) string {
	s = strings.ToUpper(strings.TrimSpace(width.Narrow.String(s)))
	if s == "" {
		return ""
	}
	if canonical, ok := telcoSynonyms[s]; ok {
		return canonical
	}
	// Retry without internal spaces ("LG U +" style input).
	compact := strings.ReplaceAll(s, " ", "")
	if canonical, ok := telcoSynonyms[compact]; ok {
		return canonical
	}
	return s
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// UserProfile carries everything the pipeline knows about the requesting user.
// Collection fields are treated as sets; Categories is used for tie-breaks only.
type UserProfile struct {
	UserID       string       `json:"userId"`
	Telco        string       `json:"telco,omitempty"`
	Cards        []string     `json:"cards,omitempty"`
	Memberships  []string     `json:"memberships,omitempty"`
	Affiliations []string     `json:"affiliations,omitempty"`
	Coords       *Coordinates `json:"coords,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
}

// Normalize canonicalizes the telco name and trims collection entries.
// Empty entries are dropped so the set invariant holds after normalization.
func (p *UserProfile) Normalize() {
	if p == nil {
		return
	}
	p.Telco = NormalizeTelco(p.Telco)
	p.Cards = trimSet(p.Cards)
	p.Memberships = trimSet(p.Memberships)
	p.Affiliations = trimSet(p.Affiliations)
	p.Categories = trimSet(p.Categories)
}

// Validate checks the profile invariant: telco absent or in the allowed set,
// and all collection fields free of empty strings. Call after Normalize.
func (p *UserProfile) Validate() error {
	if p == nil {
		return nil
	}
	if p.UserID == "" {
		return eris.New("profile: userId is required")
	}
	if p.Telco == "" {
		return eris.New("profile: telco is required")
	}
	switch p.Telco {
	case TelcoSKT, TelcoKT, TelcoLGU:
	default:
		return eris.Errorf("profile: unknown telco %q", p.Telco)
	}
	for _, set := range [][]string{p.Cards, p.Memberships, p.Affiliations, p.Categories} {
		for _, v := range set {
			if strings.TrimSpace(v) == "" {
				return eris.New("profile: collection fields must not contain empty strings")
			}
		}
	}
	return nil
}

func trimSet(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
