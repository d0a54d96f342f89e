package queryfilter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nearbite/nearbite/internal/model"
)

// Result is the validation outcome. Reason is user-facing when OK is false.
type Result struct {
	OK     bool
	Reason string
}

// injectionPatterns match prompt-injection attempts, with localized variants.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(prior|previous)\s+instructions`),
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)role\s*change`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`이전\s*지시.*무시`),
	regexp.MustCompile(`지시\s*사항.*무시`),
	regexp.MustCompile(`시스템\s*프롬프트`),
	regexp.MustCompile(`역할.*(변경|바꿔)`),
	regexp.MustCompile(`너는\s*이제`),
}

// blockedTopics maps a topic id to the keywords that flag it. The id appears
// in the rejection reason.
var blockedTopics = map[string][]string{
	"programming": {"프로그래밍", "코딩", "파이썬", "자바스크립트", "코드 짜", "programming", "source code"},
	"politics":    {"정치", "대통령", "국회", "선거", "정당"},
	"investment":  {"투자", "주식", "비트코인", "코인", "부동산 시세", "재테크"},
	"medical":     {"진단", "처방", "약 추천", "질병", "증상", "치료"},
	"legal":       {"소송", "법률", "변호사", "계약서 검토", "고소"},
	"gambling":    {"도박", "배팅", "카지노", "토토"},
}

// allowedKeywords cover the F&B, discount, and location vocabulary. Texts of
// 20+ runes that hit none of these are off-topic.
var allowedKeywords = []string{
	// food and beverage
	"맛집", "식당", "카페", "음식", "커피", "밥", "메뉴", "디저트", "치킨", "피자",
	"분식", "고기", "술집", "브런치", "베이커리", "빵", "레스토랑", "음식점", "먹을",
	"restaurant", "cafe", "food",
	// discounts
	"할인", "혜택", "쿠폰", "멤버십", "적립", "이벤트", "세일", "discount",
	// location
	"근처", "주변", "여기", "역", "동네", "거리", "가까운",
}

// Validate checks a sanitized query text and an optional profile.
// The text should already have passed through Sanitize.
func Validate(text string, profile *model.UserProfile) Result {
	if text == "" {
		return Result{Reason: "query is empty"}
	}

	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return Result{Reason: "query looks like a prompt-injection attempt"}
		}
	}

	lower := strings.ToLower(text)
	for topic, words := range blockedTopics {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return Result{Reason: fmt.Sprintf("unsupported topic: %s", topic)}
			}
		}
	}

	// Short texts get the benefit of the doubt; longer ones must look like
	// an F&B / discount / location request.
	if utf8.RuneCountInString(text) >= 20 && !containsAllowed(lower) {
		return Result{Reason: "query is not about food, discounts, or nearby places"}
	}

	if profile != nil {
		if profile.UserID == "" {
			return Result{Reason: "profile is missing userId"}
		}
		if profile.Telco == "" {
			return Result{Reason: "profile is missing telco"}
		}
	}

	return Result{OK: true}
}

func containsAllowed(lower string) bool {
	for _, w := range allowedKeywords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
