package gmailapi

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	invisibleReplacer = strings.NewReplacer(
		"​", "", // zero-width space
		"‌", "", // zero-width non-joiner
		"‍", "", // zero-width joiner
		"\uFEFF", "", // byte-order mark
	)

	bracketedURLPattern = regexp.MustCompile(`\[https?://[^\]]+\]`)
	urlPattern          = regexp.MustCompile(`https?://\S+`)
	spaceRunPattern     = regexp.MustCompile(`[ \t]+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)

	// Markers mail clients insert above quoted or forwarded history.
	attributionPattern = regexp.MustCompile(`(?mi)^On .{1,200} wrote:\s*$`)
	separatorPattern   = regexp.MustCompile(`(?mi)^-+ ?(Original|Forwarded) Message ?-+\s*$`)
	fromBlockPattern   = regexp.MustCompile(`(?m)^From: .+$`)
)

// cleanText normalizes message text for prompt building: NFC
// normalization, HTML entity unescaping, removal of invisible and control
// characters, URL removal, and per-line whitespace collapsing.
func cleanText(text string) string {
	text = norm.NFC.String(text)
	text = html.UnescapeString(text)
	text = invisibleReplacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (unicode.IsControl(r) || unicode.In(r, unicode.Cf)) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	text = b.String()

	text = bracketedURLPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunPattern.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripHTMLTags removes markup from an HTML body that had no plain-text
// alternative.
func stripHTMLTags(text string) string {
	return htmlTagPattern.ReplaceAllString(text, "")
}

// visibleReply returns the text the sender actually wrote, cutting quoted
// history, forwarded blocks, and quote-prefixed lines. The result can be
// empty when the message is nothing but quoted history.
func visibleReply(text string) string {
	cut := len(text)
	for _, pattern := range []*regexp.Regexp{attributionPattern, separatorPattern, fromBlockPattern} {
		if loc := pattern.FindStringIndex(text); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	text = text[:cut]

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
