package pdfproc

import (
	"regexp"
	"strings"

	"github.com/crestline-labs/paperdesk/internal/textutil"
)

const (
	minAbstractLen      = 50
	minStructureLen     = 100
	structureStopLen    = 500
	minParagraphLen     = 100
	maxParagraphLen     = 2000
	sectionHeaderMaxLen = 20
)

// abstractPatterns capture a labeled abstract section up to the next
// section heading.
var abstractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\babstract\s*:?\s*(.+?)\n\s*(?:keywords?\b|introduction\b|1\.|background\b|methods?\b|conclusion\b)`),
	regexp.MustCompile(`(?is)\bsummary\s*:?\s*(.+?)\n\s*(?:keywords?\b|introduction\b|1\.|background\b|methods?\b|conclusion\b)`),
	regexp.MustCompile(`(?is)\boverview\s*:?\s*(.+?)\n\s*(?:keywords?\b|introduction\b|1\.|background\b|methods?\b|conclusion\b)`),
}

var (
	sectionHeaderWords = []string{"abstract", "summary", "overview"}
	sectionStopWords   = []string{"introduction", "background", "method", "keyword", "1.", "i."}
	paragraphRejects   = []string{"figure", "table", "reference", "citation", "doi:", "isbn"}
)

// abstractByPatterns matches a labeled abstract section bounded by the
// next heading. Empty string means no match.
func abstractByPatterns(text string) string {
	for _, re := range abstractPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if candidate := cleanExtracted(m[1]); len(candidate) > minAbstractLen {
				return candidate
			}
		}
	}
	return ""
}

// abstractByStructure scans lines for a short section header naming the
// abstract, then collects following lines until the next section starts.
func abstractByStructure(text string) string {
	var collected strings.Builder
	var inAbstract bool

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))

		if !inAbstract {
			if len(lower) < sectionHeaderMaxLen && containsAny(lower, sectionHeaderWords) {
				inAbstract = true
			}
			continue
		}

		if containsAny(lower, sectionStopWords) {
			break
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			collected.WriteString(trimmed)
			collected.WriteString(" ")
		}
		if collected.Len() > structureStopLen {
			break
		}
	}

	if candidate := cleanExtracted(collected.String()); len(candidate) > minStructureLen {
		return candidate
	}
	return ""
}

// firstParagraph falls back to the first substantial paragraph that does
// not look like front-matter boilerplate.
func firstParagraph(text string) string {
	for _, paragraph := range strings.Split(text, "\n\n") {
		candidate := cleanExtracted(paragraph)
		if len(candidate) <= minParagraphLen || len(candidate) >= maxParagraphLen {
			continue
		}
		if containsAny(strings.ToLower(candidate), paragraphRejects) {
			continue
		}
		return candidate
	}
	return ""
}

func cleanExtracted(s string) string {
	return textutil.CollapseWhitespace(textutil.Sanitize(s))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
