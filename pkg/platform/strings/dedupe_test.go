package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	got := DedupeAndTrim([]string{"  bob123 ", "bob_2", "bob123", "", "  "})
	assert.Equal(t, []string{"bob123", "bob_2"}, got)
}

func TestDedupeAndTrimEmptyInput(t *testing.T) {
	assert.NotNil(t, DedupeAndTrim(nil))
	assert.Empty(t, DedupeAndTrim(nil))
}
