// Package lang handles the language tags reported by the transcription
// gateway and the majority vote across chunked transcriptions.
package lang

import "strings"

// Unknown is the tag used when the gateway cannot identify the spoken
// language, and the fallback when no chunk reported one.
const Unknown = "unknown"

// Normalize normalizes a language tag to lowercase with hyphen separator.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(tag string) string {
	return strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
}

// Known reports whether the tag carries usable language information.
func Known(tag string) bool {
	if tag == "" {
		return false
	}
	return Normalize(tag) != Unknown
}
