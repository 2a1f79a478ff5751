package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     [RuleCount]bool
	}{
		{
			name:     "all rules satisfied",
			password: "Ab1!aaaa",
			want:     [RuleCount]bool{true, true, true, true, true},
		},
		{
			name:     "short lowercase only",
			password: "abc",
			want:     [RuleCount]bool{false, false, true, false, false},
		},
		{
			name:     "empty",
			password: "",
			want:     [RuleCount]bool{false, false, false, false, false},
		},
		{
			name:     "exactly eight characters passes length",
			password: "aaaaaaaa",
			want:     [RuleCount]bool{true, false, true, false, false},
		},
		{
			name:     "129 characters fails length only",
			password: "A1!" + strings.Repeat("a", 126),
			want:     [RuleCount]bool{false, true, true, true, true},
		},
		{
			name:     "128 characters passes length",
			password: "A1!" + strings.Repeat("a", 125),
			want:     [RuleCount]bool{true, true, true, true, true},
		},
		{
			name:     "digits and specials without letters",
			password: "12345678!",
			want:     [RuleCount]bool{true, false, false, true, true},
		},
		{
			name:     "unlisted special character does not count",
			password: "Abcdefg1~",
			want:     [RuleCount]bool{true, true, true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.password))
		})
	}
}

func TestEvaluate_EverySpecialCharacterCounts(t *testing.T) {
	for _, r := range specialSet {
		got := Evaluate("aaaaaaa" + string(r))
		assert.True(t, got[RuleSpecial], "special rule should pass for %q", r)
	}
}

func TestStrong(t *testing.T) {
	assert.True(t, Strong("Ab1!aaaa"))
	assert.False(t, Strong("Ab1aaaaa"))
	assert.False(t, Strong(""))
}
