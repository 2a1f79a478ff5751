// Package password scores a candidate password against five independent
// rules. The result feeds a segment meter in the caller's UI; rendering is
// not this package's concern.
package password

import "strings"

// RuleCount is the fixed number of independent strength rules.
const RuleCount = 5

// Rule indexes into the vector returned by Evaluate.
const (
	RuleLength = iota
	RuleUppercase
	RuleLowercase
	RuleDigit
	RuleSpecial
)

const (
	minLength = 8
	maxLength = 128

	specialSet = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Evaluate recomputes all five predicates from scratch. No predicate depends
// on another.
func Evaluate(candidate string) [RuleCount]bool {
	var v [RuleCount]bool
	v[RuleLength] = len(candidate) >= minLength && len(candidate) <= maxLength
	for _, r := range candidate {
		switch {
		case r >= 'A' && r <= 'Z':
			v[RuleUppercase] = true
		case r >= 'a' && r <= 'z':
			v[RuleLowercase] = true
		case r >= '0' && r <= '9':
			v[RuleDigit] = true
		case strings.ContainsRune(specialSet, r):
			v[RuleSpecial] = true
		}
	}
	return v
}

// Strong reports whether every rule passes.
func Strong(candidate string) bool {
	for _, ok := range Evaluate(candidate) {
		if !ok {
			return false
		}
	}
	return true
}
