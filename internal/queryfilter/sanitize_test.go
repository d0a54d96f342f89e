package queryfilter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "카페 추천", Sanitize("  카페 추천\n"))
	assert.Equal(t, "", Sanitize("   "))

	long := strings.Repeat("가", MaxQueryLen+50)
	got := Sanitize(long)
	assert.Equal(t, MaxQueryLen, utf8.RuneCountInString(got))

	// Idempotent.
	assert.Equal(t, got, Sanitize(got))
}
