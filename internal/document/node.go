package document

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// NodeType identifies the structural kind of a block node.
type NodeType string

// Block node types understood by the engine. The splitter treats all types
// uniformly; types matter only to merge planning (node summaries) and to
// the hosting surface.
const (
	NodeParagraph NodeType = "paragraph"
	NodeHeading   NodeType = "heading"
	NodeList      NodeType = "list"
	NodeListItem  NodeType = "list_item"
	NodeQuote     NodeType = "blockquote"
	NodeRule      NodeType = "horizontal_rule"
	NodeTable     NodeType = "table"
)

// BlockNode is a top-level structural unit of a document.
//
// ID is a stable unique identifier assigned the first time the node is
// observed (see EnsureIDs) and preserved across every split and merge.
type BlockNode struct {
	ID       string            `json:"id,omitempty"`
	Type     NodeType          `json:"type"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []BlockNode       `json:"children,omitempty"`
}

// Summary is the minimal node description exchanged with the merge planner
// and the background channel: identity and type, nothing else.
type Summary struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
}

// NewParagraph returns a paragraph node with a fresh id.
func NewParagraph(text string) BlockNode {
	return BlockNode{ID: uuid.NewString(), Type: NodeParagraph, Text: text}
}

// NewNode returns a node of the given type with a fresh id.
func NewNode(typ NodeType, text string) BlockNode {
	return BlockNode{ID: uuid.NewString(), Type: typ, Text: text}
}

// Size returns the node's offset size: open token + one position per rune
// of text + close token, plus nested children.
func (n BlockNode) Size() int {
	size := 2 + utf8.RuneCountInString(n.Text)
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// HasContent reports whether the node carries any non-whitespace text,
// directly or in a child.
func (n BlockNode) HasContent() bool {
	for _, r := range n.Text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	for _, c := range n.Children {
		if c.HasContent() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node.
func (n BlockNode) Clone() BlockNode {
	out := n
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	if n.Children != nil {
		out.Children = make([]BlockNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// EnsureIDs assigns a fresh uuid to every node (recursively) that does not
// yet carry one. It returns the number of ids assigned. Existing ids are
// never touched; moving a node between pages keeps its identity.
func EnsureIDs(nodes []BlockNode) int {
	assigned := 0
	for i := range nodes {
		if nodes[i].ID == "" {
			nodes[i].ID = uuid.NewString()
			assigned++
		}
		assigned += EnsureIDs(nodes[i].Children)
	}
	return assigned
}
