package scholar

import (
	"bytes"

	"golang.org/x/net/html"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/textutil"
)

// abstractClasses are markup conventions used by major publishers for the
// abstract section of a paper landing page, tried in order.
var abstractClasses = []string{
	"abstract",
	"abstract-content",
	"c-article-section__content",
}

// extractAbstract pulls the abstract text out of a paper landing page.
func extractAbstract(body []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	candidates := []*html.Node{
		findID(root, "abstract"),
		findAttr(root, "data-testid", "abstract"),
	}
	for _, class := range abstractClasses {
		candidates = append(candidates, findClass(root, class))
	}

	for _, n := range candidates {
		if n == nil {
			continue
		}
		if text := textutil.CollapseWhitespace(nodeText(n)); text != "" {
			return text, nil
		}
	}
	return "", domain.ErrNotFound
}

func findID(n *html.Node, id string) *html.Node {
	return findAttr(n, "id", id)
}

func findAttr(n *html.Node, key, val string) *html.Node {
	var found *html.Node
	visit(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && attr(node, key) == val {
			found = node
			return false
		}
		return true
	})
	return found
}
