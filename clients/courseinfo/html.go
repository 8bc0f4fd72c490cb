package courseinfo

import (
	"strings"

	"golang.org/x/net/html"
)

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// findNode walks the tree depth first and returns the first node matching pred
func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, pred); found != nil {
			return found
		}
	}
	return nil
}

// findFollowing returns the first element with the given tag after n in document order
func findFollowing(n *html.Node, tag string) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		for sibling := cur.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if found := findNode(sibling, func(node *html.Node) bool { return isElement(node, tag) }); found != nil {
				return found
			}
		}
	}
	return nil
}

func nextElementSibling(n *html.Node) *html.Node {
	for sibling := n.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if sibling.Type == html.ElementNode {
			return sibling
		}
		if sibling.Type == html.TextNode && strings.TrimSpace(sibling.Data) != "" {
			return sibling
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}
