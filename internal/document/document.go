package document

// Document is an ordered sequence of block nodes. The zero value is a
// structurally empty document; surfaces never hold one of those, so use
// Empty to get the canonical single-placeholder form.
type Document struct {
	Nodes []BlockNode `json:"nodes"`
}

// New builds a document from the given nodes. The slice is used as-is;
// callers that need isolation should Clone first.
func New(nodes ...BlockNode) Document {
	return Document{Nodes: nodes}
}

// Empty returns the canonical empty document: a single empty paragraph
// placeholder with a fresh id. The engine never emits a document with no
// nodes at all.
func Empty() Document {
	return Document{Nodes: []BlockNode{NewParagraph("")}}
}

// NodeCount returns the number of top-level block nodes.
func (d Document) NodeCount() int {
	return len(d.Nodes)
}

// Size returns the document's offset size: the sum of its node sizes.
// Valid cursor offsets lie in [1, Size()-1].
func (d Document) Size() int {
	size := 0
	for _, n := range d.Nodes {
		size += n.Size()
	}
	return size
}

// OffsetOf returns the offset at which node i begins. OffsetOf(NodeCount())
// equals Size(). i is clamped to [0, NodeCount()].
func (d Document) OffsetOf(i int) int {
	if i < 0 {
		i = 0
	}
	if i > len(d.Nodes) {
		i = len(d.Nodes)
	}
	offset := 0
	for _, n := range d.Nodes[:i] {
		offset += n.Size()
	}
	return offset
}

// IsBlank reports whether the document carries no non-whitespace content.
func (d Document) IsBlank() bool {
	for _, n := range d.Nodes {
		if n.HasContent() {
			return false
		}
	}
	return true
}

// HasContent reports whether any node carries non-whitespace text.
func (d Document) HasContent() bool {
	return !d.IsBlank()
}

// Summaries returns the ordered {id, type} summaries of the top-level nodes.
func (d Document) Summaries() []Summary {
	out := make([]Summary, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = Summary{ID: n.ID, Type: n.Type}
	}
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d.Nodes == nil {
		return Document{}
	}
	nodes := make([]BlockNode, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = n.Clone()
	}
	return Document{Nodes: nodes}
}
