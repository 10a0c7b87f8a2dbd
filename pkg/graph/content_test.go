package graph

import "testing"

func TestContentText(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		id   string
		want string
	}{
		{
			name: "object of scalar rows",
			doc:  `{"name": "Ada", "age": 36}`,
			id:   "1",
			want: "{\n  \"name\": \"Ada\",\n  \"age\": 36\n}",
		},
		{
			name: "container rows are excluded",
			doc:  `{"id": 7, "tags": ["a"], "meta": {"x": 1}}`,
			id:   "1",
			want: "{\n  \"id\": 7\n}",
		},
		{
			name: "only container rows collapse to empty object",
			doc:  `{"tags": ["a"], "meta": {"x": 1}}`,
			id:   "1",
			want: "{}",
		},
		{
			name: "empty object node",
			doc:  `{"a": {}}`,
			id:   "2",
			want: "{}",
		},
		{
			name: "array node has no rows",
			doc:  `{"a": [1, 2]}`,
			id:   "2",
			want: "{}",
		},
		{
			name: "scalar leaf returns raw literal",
			doc:  `["hello"]`,
			id:   "2",
			want: `"hello"`,
		},
		{
			name: "number literal survives untouched",
			doc:  `{"price": 1.50}`,
			id:   "1",
			want: "{\n  \"price\": 1.50\n}",
		},
		{
			name: "row order follows the document, not sort order",
			doc:  `{"zebra": 1, "apple": 2}`,
			id:   "1",
			want: "{\n  \"zebra\": 1,\n  \"apple\": 2\n}",
		},
		{
			name: "empty string key is still a keyed row",
			doc:  `{"": true}`,
			id:   "1",
			want: "{\n  \"\": true\n}",
		},
		{
			name: "scalar root",
			doc:  `null`,
			id:   "1",
			want: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, tt.doc)
			n, ok := g.NodeByID(tt.id)
			if !ok {
				t.Fatalf("node %s not found", tt.id)
			}
			if got := n.ContentText(); got != tt.want {
				t.Errorf("ContentText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentTextNilNode(t *testing.T) {
	var n *Node
	if got := n.ContentText(); got != "{}" {
		t.Errorf("ContentText() on nil = %q, want {}", got)
	}
}

func TestContentTextRoundTripsThroughEdit(t *testing.T) {
	// Content shown for a node must parse back as JSON, since the editor
	// feeds it straight to the save path.
	g := mustBuild(t, storeDoc)
	for _, n := range g.Nodes() {
		text := n.ContentText()
		if _, err := Build(text); err != nil {
			t.Errorf("node %s content %q is not valid JSON: %v", n.ID, text, err)
		}
	}
}
