// Package util provides common utility functions used across the codebase.
package util

import "strings"

// doubleQuoteEscaper escapes the characters the shell still interprets inside "...".
var doubleQuoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
)

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// This is safe for use in shell commands where the string should be treated literally.
func ShellQuote(s string) string {
	return "'" + EscapeSingleQuoted(s) + "'"
}

// EscapeSingleQuoted escapes s for embedding between single quotes.
// Double quotes pass through unchanged.
func EscapeSingleQuoted(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	return strings.ReplaceAll(s, "'", "'\\''")
}

// EscapeDoubleQuoted escapes s for embedding between double quotes.
// Single quotes pass through unchanged.
func EscapeDoubleQuoted(s string) string {
	return doubleQuoteEscaper.Replace(s)
}

// ShellQuotePreserveTilde quotes a path for shell execution while preserving tilde expansion.
// For paths starting with ~/, the tilde is kept unquoted and the rest is single-quoted.
// For other paths, the entire path is single-quoted.
func ShellQuotePreserveTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		// Keep ~ unquoted, quote the rest
		return "~/" + ShellQuote(path[2:])
	}
	if path == "~" {
		return "~"
	}
	return ShellQuote(path)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
