// Package server exposes an open document and its graph over HTTP so a
// browser or another tool can inspect what the terminal UI is showing.
// Responses use a uniform JSON envelope; graph images are rendered
// server-side from the same DOT output the export command produces.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/dshills/jsongraph/pkg/graph"
)

// Envelope is the standard response wrapper for all API responses.
// Success: {"ok": true, "data": {...}}
// Error:   {"ok": false, "error": {"code": "...", "message": "..."}}
type Envelope struct {
	OK    bool          `json:"ok"`
	Data  interface{}   `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload holds structured error information.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Standard error codes mapped to HTTP status codes.
const (
	ErrValidation   = "validation_error" // 400
	ErrNotFound     = "not_found"        // 404
	ErrUnauthorized = "unauthorized"     // 401
	ErrForbidden    = "forbidden"        // 403
	ErrInternal     = "internal"         // 500
)

// WriteSuccess writes a JSON success envelope with the given data and status.
func WriteSuccess(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{OK: true, Data: data}); err != nil {
		log.Error("write success response", "err", err)
	}
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    code,
			Message: message,
		},
	}); err != nil {
		log.Error("write error response", "err", err)
	}
}

// RowDTO is the API representation of one row inside a node. Container rows
// reference a child node and carry no value of their own.
type RowDTO struct {
	Key       *string `json:"key"`
	Value     string  `json:"value,omitempty"`
	Kind      string  `json:"kind"`
	Container bool    `json:"container"`
	Children  int     `json:"children,omitempty"`
}

// NodeDTO is the API representation of a graph node.
type NodeDTO struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Path    string   `json:"path"`
	Depth   int      `json:"depth"`
	Rows    []RowDTO `json:"rows"`
	Content string   `json:"content"`
}

// EdgeDTO is the API representation of a graph edge.
type EdgeDTO struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// GraphDTO is the API representation of the whole graph.
type GraphDTO struct {
	Nodes    []NodeDTO `json:"nodes"`
	Edges    []EdgeDTO `json:"edges"`
	MaxDepth int       `json:"max_depth"`
}

// DocumentDTO is the API representation of the open document.
type DocumentDTO struct {
	Contents string `json:"contents"`
	Source   string `json:"source"`
	Revision uint64 `json:"revision"`
}

// NodeToDTO converts a graph node to its API shape.
func NodeToDTO(n *graph.Node) NodeDTO {
	dto := NodeDTO{
		ID:      n.ID,
		Label:   n.Label,
		Kind:    string(n.Kind),
		Path:    n.PathText(),
		Depth:   len(n.Path),
		Rows:    make([]RowDTO, 0, len(n.Rows)),
		Content: n.ContentText(),
	}
	for _, row := range n.Rows {
		rd := RowDTO{
			Kind:      string(row.Kind),
			Container: row.Kind.IsContainer(),
		}
		if row.HasKey {
			key := row.Key
			rd.Key = &key
		}
		if row.Kind.IsContainer() {
			rd.Children = row.ChildCount
		} else {
			rd.Value = row.Raw
		}
		dto.Rows = append(dto.Rows, rd)
	}
	return dto
}

// GraphToDTO converts a graph to its API shape. Collections serialize as []
// when empty, never null.
func GraphToDTO(g *graph.Graph) GraphDTO {
	dto := GraphDTO{
		Nodes:    make([]NodeDTO, 0, g.NodeCount()),
		Edges:    make([]EdgeDTO, 0, g.EdgeCount()),
		MaxDepth: g.MaxDepth(),
	}
	for _, n := range g.Nodes() {
		dto.Nodes = append(dto.Nodes, NodeToDTO(n))
	}
	for _, e := range g.Edges() {
		dto.Edges = append(dto.Edges, EdgeDTO{ID: e.ID, From: e.From, To: e.To, Label: e.Label})
	}
	return dto
}

// NodesToDTOs converts a node slice, returning an empty slice instead of nil.
func NodesToDTOs(nodes []*graph.Node) []NodeDTO {
	dtos := make([]NodeDTO, 0, len(nodes))
	for _, n := range nodes {
		dtos = append(dtos, NodeToDTO(n))
	}
	return dtos
}
