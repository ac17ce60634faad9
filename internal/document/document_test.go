package document

import "testing"

func TestEnsureIDs(t *testing.T) {
	nodes := []BlockNode{
		{Type: NodeParagraph, Text: "no id"},
		NewParagraph("has id"),
		{Type: NodeList, Children: []BlockNode{
			{Type: NodeListItem, Text: "nested, no id"},
		}},
	}
	existing := nodes[1].ID

	assigned := EnsureIDs(nodes)
	if assigned != 3 {
		t.Errorf("expected 3 assigned ids, got %d", assigned)
	}
	if nodes[0].ID == "" || nodes[2].ID == "" || nodes[2].Children[0].ID == "" {
		t.Error("all nodes must carry ids after EnsureIDs")
	}
	if nodes[1].ID != existing {
		t.Error("existing id must not be regenerated")
	}

	if again := EnsureIDs(nodes); again != 0 {
		t.Errorf("second pass should assign nothing, got %d", again)
	}
}

func TestBlockNode_Size(t *testing.T) {
	n := BlockNode{Type: NodeParagraph, Text: "abc"}
	if n.Size() != 5 {
		t.Errorf("expected size 5 (2 tokens + 3 runes), got %d", n.Size())
	}

	empty := BlockNode{Type: NodeParagraph}
	if empty.Size() != 2 {
		t.Errorf("empty paragraph size = %d, expected 2", empty.Size())
	}

	multibyte := BlockNode{Type: NodeParagraph, Text: "héllo"}
	if multibyte.Size() != 7 {
		t.Errorf("size must count runes, got %d", multibyte.Size())
	}

	nested := BlockNode{Type: NodeList, Children: []BlockNode{
		{Type: NodeListItem, Text: "ab"},
	}}
	if nested.Size() != 6 {
		t.Errorf("nested size = %d, expected 6", nested.Size())
	}
}

func TestDocument_SizeAndOffsets(t *testing.T) {
	doc := New(
		BlockNode{ID: "a", Type: NodeParagraph, Text: "one"},  // size 5
		BlockNode{ID: "b", Type: NodeParagraph, Text: "two2"}, // size 6
		BlockNode{ID: "c", Type: NodeParagraph},               // size 2
	)

	if doc.Size() != 13 {
		t.Fatalf("Size() = %d, expected 13", doc.Size())
	}
	if doc.OffsetOf(0) != 0 {
		t.Errorf("OffsetOf(0) = %d", doc.OffsetOf(0))
	}
	if doc.OffsetOf(1) != 5 {
		t.Errorf("OffsetOf(1) = %d, expected 5", doc.OffsetOf(1))
	}
	if doc.OffsetOf(2) != 11 {
		t.Errorf("OffsetOf(2) = %d, expected 11", doc.OffsetOf(2))
	}
	if doc.OffsetOf(3) != doc.Size() {
		t.Errorf("OffsetOf(NodeCount) must equal Size")
	}
	if doc.OffsetOf(99) != doc.Size() || doc.OffsetOf(-1) != 0 {
		t.Error("OffsetOf must clamp its argument")
	}
}

func TestDocument_Blank(t *testing.T) {
	if !Empty().IsBlank() {
		t.Error("Empty() must be blank")
	}
	if !New(BlockNode{Type: NodeParagraph, Text: " \t\n"}).IsBlank() {
		t.Error("whitespace-only document must be blank")
	}
	if New(NewParagraph("x")).IsBlank() {
		t.Error("document with text must not be blank")
	}
}

func TestDocument_Clone(t *testing.T) {
	doc := New(BlockNode{ID: "a", Type: NodeParagraph, Text: "one",
		Attrs: map[string]string{"align": "left"}})

	clone := doc.Clone()
	clone.Nodes[0].Text = "changed"
	clone.Nodes[0].Attrs["align"] = "right"

	if doc.Nodes[0].Text != "one" {
		t.Error("clone must not share node data")
	}
	if doc.Nodes[0].Attrs["align"] != "left" {
		t.Error("clone must not share attrs map")
	}
}

func TestSummaries(t *testing.T) {
	doc := New(
		BlockNode{ID: "a", Type: NodeHeading, Text: "h"},
		BlockNode{ID: "b", Type: NodeParagraph, Text: "p"},
	)

	sums := doc.Summaries()
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	if sums[0] != (Summary{ID: "a", Type: NodeHeading}) {
		t.Errorf("unexpected summary: %+v", sums[0])
	}
	if sums[1] != (Summary{ID: "b", Type: NodeParagraph}) {
		t.Errorf("unexpected summary: %+v", sums[1])
	}
}
