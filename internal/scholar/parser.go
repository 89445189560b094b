package scholar

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/textutil"
)

var (
	yearRe   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// parseResults extracts papers from one scholar result page. Entries
// without a linked title (citation-only records) are skipped.
func parseResults(body []byte, now time.Time) ([]domain.Paper, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var papers []domain.Paper
	walkBlocks(root, func(block, container *html.Node) {
		if p, ok := parseResult(block, container, now); ok {
			papers = append(papers, p)
		}
	})
	return papers, nil
}

// walkBlocks visits every result body ("gs_ri") together with its
// enclosing result container, which also holds the sidebar PDF link.
func walkBlocks(n *html.Node, fn func(block, container *html.Node)) {
	var walk func(n, parent *html.Node)
	walk = func(n, parent *html.Node) {
		if hasClass(n, "gs_ri") {
			container := parent
			if container == nil {
				container = n
			}
			fn(n, container)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, n)
		}
	}
	walk(n, nil)
}

func parseResult(block, container *html.Node, now time.Time) (domain.Paper, bool) {
	titleNode := findClass(block, "gs_rt")
	if titleNode == nil {
		return domain.Paper{}, false
	}
	link := findTag(titleNode, "a")
	if link == nil {
		return domain.Paper{}, false
	}

	title := textutil.CollapseWhitespace(nodeText(link))
	if title == "" {
		return domain.Paper{}, false
	}

	p := domain.Paper{
		ID:        domain.PaperID(title),
		Title:     title,
		URL:       attr(link, "href"),
		ScrapedAt: now,
	}

	if byline := findClass(block, "gs_a"); byline != nil {
		raw := textutil.CollapseWhitespace(nodeText(byline))
		names := raw
		if i := strings.Index(raw, " - "); i >= 0 {
			names = raw[:i]
			if y := yearRe.FindString(raw[i:]); y != "" {
				p.Year, _ = strconv.Atoi(y)
			}
		}
		p.Authors = strings.Join(textutil.CleanAuthors(names), ", ")
	}

	if snippet := findClass(block, "gs_rs"); snippet != nil {
		p.Snippet = textutil.CollapseWhitespace(nodeText(snippet))
	}

	p.Citations = parseCitations(block)

	if sidebar := findClass(container, "gs_or_ggsm"); sidebar != nil {
		if a := findTag(sidebar, "a"); a != nil {
			p.PDFURL = attr(a, "href")
		}
	}

	return p, true
}

func parseCitations(block *html.Node) int {
	var count int
	visit(block, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		text := nodeText(n)
		if !strings.Contains(text, "Cited by") {
			return true
		}
		if digits := digitsRe.FindString(text); digits != "" {
			count, _ = strconv.Atoi(digits)
		}
		return false
	})
	return count
}

// isBlockedPage reports whether the response looks like a bot challenge
// instead of a result page.
func isBlockedPage(body []byte) bool {
	lower := bytes.ToLower(body)
	return bytes.Contains(lower, []byte("unusual traffic")) ||
		bytes.Contains(lower, []byte("recaptcha")) ||
		bytes.Contains(lower, []byte("gs_captcha"))
}

// visit walks the subtree depth-first; fn returning false stops descent.
func visit(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c, fn)
	}
}

func findClass(n *html.Node, class string) *html.Node {
	var found *html.Node
	visit(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if hasClass(node, class) {
			found = node
			return false
		}
		return true
	})
	return found
}

func findTag(n *html.Node, tag string) *html.Node {
	var found *html.Node
	visit(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && node.Data == tag {
			found = node
			return false
		}
		return true
	})
	return found
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	visit(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
		}
		return true
	})
	return b.String()
}
