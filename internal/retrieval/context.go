package retrieval

import (
	"fmt"
	"strings"

	"github.com/nearbite/nearbite/internal/model"
)

const roleLine = "You are a location-based F&B recommender."

const noMerchantsNotice = "주변에서 조건에 맞는 매장을 찾지 못했습니다."

// ContextFormatter renders the LLM-ready context. Selected at construction
// time for ablation.
type ContextFormatter interface {
	Format(query string, profile *model.UserProfile, docs []ScoredDocument) string
}

// CandidateFormatter is the full context: role line, user request, optional
// profile block, numbered candidates, and a grounding instruction.
type CandidateFormatter struct{}

func (CandidateFormatter) Format(query string, profile *model.UserProfile, docs []ScoredDocument) string {
	if len(docs) == 0 {
		return "사용자 요청: " + query + "\n" + noMerchantsNotice
	}

	var b strings.Builder
	b.WriteString(roleLine)
	b.WriteString("\n\n사용자 요청: ")
	b.WriteString(query)
	b.WriteString("\n")

	if block := profileBlock(profile); block != "" {
		b.WriteString("\n")
		b.WriteString(block)
	}

	b.WriteString("\nCandidates:\n")
	for i, d := range docs {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, candidateLine(d)))
		b.WriteString("\n")
	}

	b.WriteString("\n위 후보에 포함된 정보만 사용해 한국어로 답하세요. 후보에 없는 매장이나 혜택은 언급하지 마세요.\n")
	return b.String()
}

// StubFormatter is the no_context ablation: the request only, no candidates.
type StubFormatter struct{}

func (StubFormatter) Format(query string, _ *model.UserProfile, _ []ScoredDocument) string {
	return roleLine + "\n\n사용자 요청: " + query + "\n"
}

func profileBlock(p *model.UserProfile) string {
	if p == nil {
		return ""
	}
	var lines []string
	if p.Telco != "" {
		lines = append(lines, "- 통신사: "+p.Telco)
	}
	if len(p.Cards) > 0 {
		lines = append(lines, "- 카드: "+strings.Join(p.Cards, ", "))
	}
	if len(p.Memberships) > 0 {
		lines = append(lines, "- 멤버십: "+strings.Join(p.Memberships, ", "))
	}
	if len(lines) == 0 {
		return ""
	}
	return "프로필:\n" + strings.Join(lines, "\n") + "\n"
}

// candidateLine renders one candidate: name – discount clause – distance –
// review highlight, skipping unknown parts.
func candidateLine(d ScoredDocument) string {
	parts := []string{d.Metadata.StoreName}
	if d.Metadata.BestDiscount != "" {
		parts = append(parts, d.Metadata.BestDiscount)
	}
	if d.Metadata.Distance != nil {
		parts = append(parts, fmt.Sprintf("%.0fm", *d.Metadata.Distance))
	}
	if d.Metadata.ReviewHighlight != "" {
		parts = append(parts, d.Metadata.ReviewHighlight)
	}
	return strings.Join(parts, " – ")
}

// FallbackAnswer renders a deterministic human-readable listing for the same
// top-K, used when LLM generation is unavailable.
func FallbackAnswer(docs []ScoredDocument) string {
	if len(docs) == 0 {
		return "주변에서 추천할 만한 매장을 찾지 못했습니다. 위치나 검색어를 바꿔서 다시 시도해 주세요."
	}

	var b strings.Builder
	b.WriteString("주변 추천 매장입니다.\n")
	for i, d := range docs {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, candidateLine(d)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
