package document

import (
	"fmt"
	"testing"
)

func makeDoc(n int) Document {
	nodes := make([]BlockNode, n)
	for i := range nodes {
		nodes[i] = NewParagraph(fmt.Sprintf("node %d", i))
	}
	return Document{Nodes: nodes}
}

func TestCalculateSplitPoint(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{1, 1},  // floored at 1
		{2, 1},
		{5, 4},
		{10, 9},  // boundary: otherwise rule
		{11, 9},  // boundary: n-2 rule starts
		{15, 13},
		{20, 18}, // boundary: n-2 rule ends
		{21, 18}, // boundary: n-3 rule starts
		{25, 22},
		{100, 97},
	}

	for _, tt := range tests {
		got := CalculateSplitPoint(tt.n)
		if got != tt.expected {
			t.Errorf("CalculateSplitPoint(%d) = %d, expected %d", tt.n, got, tt.expected)
		}
	}
}

func TestCalculateSplitPoint_Bounds(t *testing.T) {
	prev := 0
	for n := 2; n <= 200; n++ {
		sp := CalculateSplitPoint(n)
		if sp < 1 || sp > n-1 {
			t.Fatalf("CalculateSplitPoint(%d) = %d, out of [1, %d]", n, sp, n-1)
		}
		if sp < prev {
			t.Fatalf("CalculateSplitPoint not non-decreasing: f(%d)=%d < f(%d)=%d", n, sp, n-1, prev)
		}
		prev = sp
	}
}

func TestSplit_Conservation(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 11, 20, 21, 25, 50} {
		doc := makeDoc(n)
		sp := CalculateSplitPoint(n)
		res := Split(doc, sp)

		combined := append(append([]BlockNode{}, res.Kept.Nodes...), res.Overflow...)
		if len(combined) != n {
			t.Fatalf("n=%d: split produced %d nodes, expected %d", n, len(combined), n)
		}
		for i, node := range combined {
			if node.ID != doc.Nodes[i].ID {
				t.Fatalf("n=%d: node %d id changed: %q vs %q", n, i, node.ID, doc.Nodes[i].ID)
			}
			if node.Text != doc.Nodes[i].Text {
				t.Fatalf("n=%d: node %d text changed", n, i)
			}
		}
	}
}

func TestSplit_ScenarioTwentyFiveNodes(t *testing.T) {
	doc := makeDoc(25)
	sp := CalculateSplitPoint(25)
	if sp != 22 {
		t.Fatalf("expected split point 22, got %d", sp)
	}

	res := Split(doc, sp)
	if res.Kept.NodeCount() != 22 {
		t.Errorf("expected 22 kept nodes, got %d", res.Kept.NodeCount())
	}
	if len(res.Overflow) != 3 {
		t.Errorf("expected 3 overflow nodes, got %d", len(res.Overflow))
	}
	if res.Overflow[0].ID != doc.Nodes[22].ID {
		t.Error("overflow must begin at node 22")
	}
}

func TestSplit_EmptyKeptGetsPlaceholder(t *testing.T) {
	doc := makeDoc(3)
	res := Split(doc, 0)

	if res.Kept.NodeCount() != 1 {
		t.Fatalf("expected one placeholder node, got %d", res.Kept.NodeCount())
	}
	if res.Kept.Nodes[0].Type != NodeParagraph || res.Kept.Nodes[0].Text != "" {
		t.Error("placeholder must be an empty paragraph")
	}
	if res.Kept.Nodes[0].ID == "" {
		t.Error("placeholder must carry an id")
	}
	if len(res.Overflow) != 3 {
		t.Errorf("all 3 nodes should overflow, got %d", len(res.Overflow))
	}
}

func TestSplit_ClampsSplitPoint(t *testing.T) {
	doc := makeDoc(4)

	res := Split(doc, 99)
	if res.Kept.NodeCount() != 4 || len(res.Overflow) != 0 {
		t.Errorf("oversized split point should keep everything, got %d/%d",
			res.Kept.NodeCount(), len(res.Overflow))
	}

	res = Split(doc, -1)
	if len(res.Overflow) != 4 {
		t.Errorf("negative split point should overflow everything, got %d", len(res.Overflow))
	}
}

func TestSplit_DoesNotAliasInput(t *testing.T) {
	doc := makeDoc(6)
	res := Split(doc, 3)

	res.Kept.Nodes[0].Text = "mutated"
	if doc.Nodes[0].Text == "mutated" {
		t.Error("split result must not share backing array with input")
	}
	res.Overflow[0].Text = "mutated"
	if doc.Nodes[3].Text == "mutated" {
		t.Error("overflow must not share backing array with input")
	}
}

func TestMerge_InvertsSplit(t *testing.T) {
	doc := makeDoc(17)
	for sp := 0; sp <= 17; sp++ {
		res := Split(doc, sp)

		var kept []BlockNode
		if sp == 0 {
			// Placeholder is synthetic; the real kept side was empty.
			kept = nil
		} else {
			kept = res.Kept.Nodes
		}

		merged := Merge(kept, res.Overflow)
		if merged.NodeCount() != 17 {
			t.Fatalf("sp=%d: merged %d nodes, expected 17", sp, merged.NodeCount())
		}
		for i := range merged.Nodes {
			if merged.Nodes[i].ID != doc.Nodes[i].ID {
				t.Fatalf("sp=%d: node %d identity lost in merge", sp, i)
			}
		}
	}
}

func TestMerge_PreservesOrderAndInputs(t *testing.T) {
	a := []BlockNode{NewParagraph("a1"), NewParagraph("a2")}
	b := []BlockNode{NewParagraph("b1")}

	merged := Merge(a, b)
	if merged.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", merged.NodeCount())
	}
	want := []string{"a1", "a2", "b1"}
	for i, w := range want {
		if merged.Nodes[i].Text != w {
			t.Errorf("node %d = %q, expected %q", i, merged.Nodes[i].Text, w)
		}
	}

	merged.Nodes[0].Text = "mutated"
	if a[0].Text == "mutated" {
		t.Error("merge must not mutate its inputs")
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	merged := Merge(nil, nil)
	if merged.NodeCount() != 1 {
		t.Fatalf("merging nothing should yield the placeholder document, got %d nodes", merged.NodeCount())
	}
}
