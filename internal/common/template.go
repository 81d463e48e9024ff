// Package common provides utility functions for placeholder replacement.
//
// The {placeholder} syntax allows configured strings, such as notification
// subject templates, to reference run values. At render time the references
// are replaced with actual values.
//
// Example:
//   Input:  "run {run-id}: {matched} matches"
//   Values: {"run-id": "run_abc", "matched": "12"}
//   Output: "run run_abc: 12 matches"
//
// Replacement is case-sensitive. Missing placeholders are logged as warnings
// but left unchanged, allowing graceful degradation.
package common

import (
	"regexp"

	"github.com/ternarybob/arbor"
)

// placeholderPattern matches {placeholder} references in strings.
// Allows alphanumeric characters, hyphens, and underscores.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// ReplacePlaceholders replaces all {placeholder} references in the input
// string with values from the provided map. If a placeholder is not found,
// the reference is left unchanged and a warning is logged.
func ReplacePlaceholders(input string, values map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	logUnresolvedPlaceholders(input, values, logger)

	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[1 : len(match)-1]

		if value, exists := values[name]; exists {
			return value
		}

		return match
	})
}

// logUnresolvedPlaceholders finds all {placeholder} references and logs warnings for missing values
func logUnresolvedPlaceholders(input string, values map[string]string, logger arbor.ILogger) {
	matches := placeholderPattern.FindAllStringSubmatch(input, -1)
	for _, match := range matches {
		if len(match) > 1 {
			name := match[1]
			if _, exists := values[name]; !exists {
				logger.Warn().
					Str("reference", match[0]).
					Str("placeholder", name).
					Msg("Unresolved placeholder in template")
			}
		}
	}
}
