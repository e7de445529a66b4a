package helpers

import (
	"strings"
)

// TreeNode represents a node in a tree structure for rendering.
type TreeNode interface {
	Label() string
	Children() []TreeNode
}

// RenderTree renders a tree structure in ASCII art format.
func RenderTree(root TreeNode) string {
	if root == nil {
		return "No tree data available.\n"
	}

	var buf strings.Builder
	buf.WriteString(root.Label())
	buf.WriteString("\n")
	children := root.Children()
	for i, child := range children {
		renderTreeNode(&buf, child, "", i == len(children)-1)
	}
	return buf.String()
}

func renderTreeNode(buf *strings.Builder, node TreeNode, prefix string, isLast bool) {
	connector := "├─"
	if isLast {
		connector = "└─"
	}

	buf.WriteString(prefix)
	buf.WriteString(connector)
	buf.WriteString(" ")
	buf.WriteString(node.Label())
	buf.WriteString("\n")

	childPrefix := prefix
	if isLast {
		childPrefix += "   "
	} else {
		childPrefix += "│  "
	}

	children := node.Children()
	for i, child := range children {
		renderTreeNode(buf, child, childPrefix, i == len(children)-1)
	}
}
