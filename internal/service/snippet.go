package service

import "strings"

// snippetRuneLimit is the longest a post body can be before the feed shows
// a truncated preview instead.
const snippetRuneLimit = 75

// Snippet returns a feed-sized preview of content. Bodies at or under the
// limit pass through untouched. Longer bodies are cut at the limit, trimmed
// back to the last space so no word is split, and suffixed with " ...". A
// first word longer than the whole limit leaves nothing to keep, so the
// result is just the suffix.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetRuneLimit {
		return content
	}

	cut := string(runes[:snippetRuneLimit])
	if idx := strings.LastIndex(cut, " "); idx >= 0 {
		cut = cut[:idx]
	} else {
		cut = ""
	}
	return cut + " ..."
}
