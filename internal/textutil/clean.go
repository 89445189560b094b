// Package textutil provides text cleanup for scraped and extracted content.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	citationRe     = regexp.MustCompile(`\[[\d,\s\-]+\]`)
	parenYearRe    = regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`)
	urlRe          = regexp.MustCompile(`https?://\S+`)
	doiRe          = regexp.MustCompile(`(?i)doi:\s*[\w./\-]+`)
	emailRe        = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	sectionWordRe  = regexp.MustCompile(`(?i)\b(abstract|introduction|conclusion|references?)\b:?`)
	unsafeFileRe   = regexp.MustCompile(`[<>:"/\\|?*]`)
	nonAlphaNumRe  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	authorPrefixRe = regexp.MustCompile(`(?i)\b(by|authors?:?)\s*`)
	authorTitleRe  = regexp.MustCompile(`(?i)\b(dr\.?|prof\.?|phd\.?|md\.?|jr\.?|sr\.?)\b`)
)

// Sanitize removes NUL bytes and non-printing control characters that
// Postgres text columns reject (common in PDF extractor output), keeping
// ordinary whitespace.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || (ch >= 0x7f && ch <= 0x9f) {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeForVectorizing lowercases text and strips everything but
// alphanumerics and spaces, the preprocessing applied before term weighting.
func NormalizeForVectorizing(s string) string {
	s = strings.ToLower(s)
	s = nonAlphaNumRe.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}

// CleanAcademicText strips citation markers, URLs, DOIs, email addresses
// and section headings from academic prose.
func CleanAcademicText(s string) string {
	if s == "" {
		return ""
	}
	s = sectionWordRe.ReplaceAllString(s, "")
	s = citationRe.ReplaceAllString(s, "")
	s = parenYearRe.ReplaceAllString(s, "")
	s = urlRe.ReplaceAllString(s, "")
	s = doiRe.ReplaceAllString(s, "")
	s = emailRe.ReplaceAllString(s, "")
	return CollapseWhitespace(s)
}

// CleanAuthors parses a raw scraped author string into individual names,
// stripping titles and honorifics. At most ten authors are returned.
func CleanAuthors(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = authorPrefixRe.ReplaceAllString(raw, "")

	parts := []string{raw}
	for _, sep := range []string{",", ";", " and ", " & ", "\n"} {
		var next []string
		for _, p := range parts {
			for _, piece := range strings.Split(p, sep) {
				if piece = strings.TrimSpace(piece); piece != "" {
					next = append(next, piece)
				}
			}
		}
		parts = next
	}

	out := make([]string, 0, len(parts))
	for _, name := range parts {
		if len(out) == 10 {
			break
		}
		name = authorTitleRe.ReplaceAllString(name, "")
		name = CollapseWhitespace(name)
		if len(name) > 2 {
			out = append(out, name)
		}
	}
	return out
}

// SanitizeFilename makes a filename safe for filesystem use.
func SanitizeFilename(name string) string {
	if name == "" {
		return "untitled"
	}
	name = unsafeFileRe.ReplaceAllString(name, "_")
	name = Sanitize(name)
	if len(name) > 100 {
		name = name[:100]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "untitled"
	}
	return name
}
