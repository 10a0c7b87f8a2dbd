package jsonpath

import (
	"errors"
	"testing"
)

const storeDoc = `{
  "store": {
    "name": "corner books",
    "books": [
      {"title": "Siddhartha", "author": "Hesse", "price": 9.5, "used": true},
      {"title": "Rayuela", "author": "Cortazar", "price": 14.0, "used": false},
      {"title": "Ficciones", "author": "Borges", "price": 11.25}
    ],
    "owner": {"name": "Ada", "contact": {"name": "Ada L."}}
  },
  "open": true,
  "a.b": {"c": 1}
}`

func TestQuery(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantRaw string
	}{
		{name: "top level key", expr: "$.open", wantRaw: "true"},
		{name: "nested key", expr: "$.store.name", wantRaw: `"corner books"`},
		{name: "bracket form", expr: `$["store"]["name"]`, wantRaw: `"corner books"`},
		{name: "array index", expr: "$.store.books[1].title", wantRaw: `"Rayuela"`},
		{name: "negative index", expr: "$.store.books[-1].title", wantRaw: `"Ficciones"`},
		{name: "key containing dot", expr: `$["a.b"].c`, wantRaw: "1"},
		{name: "root", expr: "$", wantRaw: storeDoc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(storeDoc, tt.expr)
			if err != nil {
				t.Fatalf("Query(%q) error: %v", tt.expr, err)
			}
			if got.Raw != tt.wantRaw {
				t.Errorf("Query(%q) = %s, want %s", tt.expr, got.Raw, tt.wantRaw)
			}
		})
	}
}

func TestQueryAll(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantCount int
		wantFirst string
	}{
		{name: "array wildcard", expr: "$.store.books[*].title", wantCount: 3, wantFirst: `"Siddhartha"`},
		{name: "dotted wildcard over object", expr: "$.store.owner.*", wantCount: 2, wantFirst: `"Ada"`},
		{name: "slice", expr: "$.store.books[0:2].title", wantCount: 2, wantFirst: `"Siddhartha"`},
		{name: "open ended slice", expr: "$.store.books[1:].title", wantCount: 2, wantFirst: `"Rayuela"`},
		{name: "negative slice", expr: "$.store.books[-2:].title", wantCount: 2, wantFirst: `"Rayuela"`},
		{name: "numeric filter", expr: "$.store.books[?(@.price > 10)].title", wantCount: 2, wantFirst: `"Rayuela"`},
		{name: "string filter", expr: `$.store.books[?(@.author == "Hesse")].title`, wantCount: 1, wantFirst: `"Siddhartha"`},
		{name: "bool filter", expr: "$.store.books[?(@.used == true)].title", wantCount: 1, wantFirst: `"Siddhartha"`},
		{name: "existence filter", expr: "$.store.books[?(@.used)].title", wantCount: 2, wantFirst: `"Siddhartha"`},
		{name: "recursive descent", expr: "$..name", wantCount: 3, wantFirst: `"corner books"`},
		{name: "no matches", expr: "$.store.books[?(@.price > 100)]", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QueryAll(storeDoc, tt.expr)
			if err != nil {
				t.Fatalf("QueryAll(%q) error: %v", tt.expr, err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("QueryAll(%q) returned %d matches, want %d", tt.expr, len(got), tt.wantCount)
			}
			if tt.wantCount > 0 && got[0].Raw != tt.wantFirst {
				t.Errorf("first match = %s, want %s", got[0].Raw, tt.wantFirst)
			}
		})
	}
}

func TestQueryErrors(t *testing.T) {
	if _, err := Query(storeDoc, "$.missing"); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing key error = %v, want ErrPathNotFound", err)
	}
	if _, err := Query("{not json", "$.a"); err == nil {
		t.Error("expected error for invalid document")
	}
	if _, err := Query(storeDoc, `$["open`); !errors.Is(err, ErrUnterminatedBracket) {
		t.Errorf("unterminated expr error = %v, want ErrUnterminatedBracket", err)
	}
	if _, err := Query(storeDoc, "$.store.books[?(@.price >)]"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("bad filter error = %v, want ErrInvalidPath", err)
	}
}

func TestValue(t *testing.T) {
	v, err := Value(storeDoc, "$.store.books[0].price")
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	f, ok := v.(float64)
	if !ok || f != 9.5 {
		t.Errorf("Value = %v (%T), want 9.5 (float64)", v, v)
	}

	v, err = Value(storeDoc, "$.store.owner")
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("Value = %T, want map", v)
	}
	if m["name"] != "Ada" {
		t.Errorf("owner name = %v, want Ada", m["name"])
	}
}
