package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/graph"
	"github.com/dshills/jsongraph/pkg/render"
	"github.com/dshills/jsongraph/pkg/storage"
)

// editBody is the JSON body for document and node writes.
type editBody struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]interface{}{
		"status":   "ok",
		"source":   s.store.Source(),
		"revision": s.store.Revision(),
	}, http.StatusOK)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, DocumentDTO{
		Contents: s.store.Contents(),
		Source:   s.store.Source(),
		Revision: s.store.Revision(),
	}, http.StatusOK)
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var body editBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, ErrValidation, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := document.ParseValue(body.Text); err != nil {
		WriteError(w, ErrValidation, err.Error(), http.StatusBadRequest)
		return
	}

	s.store.SetContents(body.Text)
	WriteSuccess(w, DocumentDTO{
		Contents: s.store.Contents(),
		Source:   s.store.Source(),
		Revision: s.store.Revision(),
	}, http.StatusOK)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.currentGraph()
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}
	WriteSuccess(w, GraphToDTO(g), http.StatusOK)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookupNode(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, NodeToDTO(n), http.StatusOK)
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookupNode(w, r)
	if !ok {
		return
	}

	var body editBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, ErrValidation, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.SaveNodeText(n.Path, body.Text); err != nil {
		WriteError(w, ErrValidation, err.Error(), http.StatusBadRequest)
		return
	}

	WriteSuccess(w, DocumentDTO{
		Contents: s.store.Contents(),
		Source:   s.store.Source(),
		Revision: s.store.Revision(),
	}, http.StatusOK)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookupNode(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteAtPath(n.Path); err != nil {
		if errors.Is(err, document.ErrPathNotFound) {
			WriteError(w, ErrNotFound, err.Error(), http.StatusNotFound)
			return
		}
		WriteError(w, ErrValidation, err.Error(), http.StatusBadRequest)
		return
	}

	WriteSuccess(w, DocumentDTO{
		Contents: s.store.Contents(),
		Source:   s.store.Source(),
		Revision: s.store.Revision(),
	}, http.StatusOK)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, ErrValidation, "missing query parameter q", http.StatusBadRequest)
		return
	}

	g, err := s.currentGraph()
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	matches := g.Search(query)
	WriteSuccess(w, map[string]interface{}{
		"query": query,
		"count": len(matches),
		"nodes": NodesToDTOs(matches),
	}, http.StatusOK)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	expression := r.URL.Query().Get("expr")
	if expression == "" {
		WriteError(w, ErrValidation, "missing query parameter expr", http.StatusBadRequest)
		return
	}

	g, err := s.currentGraph()
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	matches, err := graph.NewFilter().Apply(r.Context(), g, expression)
	if err != nil {
		if errors.Is(err, graph.ErrInvalidFilter) || errors.Is(err, graph.ErrFilterNotBoolean) {
			WriteError(w, ErrValidation, err.Error(), http.StatusBadRequest)
			return
		}
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"expression": expression,
		"count":      len(matches),
		"nodes":      NodesToDTOs(matches),
	}, http.StatusOK)
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	if s.guard == nil {
		WriteError(w, ErrForbidden, "file access not configured", http.StatusForbidden)
		return
	}

	userPath := r.URL.Query().Get("path")
	if userPath == "" {
		WriteError(w, ErrValidation, "missing query parameter path", http.StatusBadRequest)
		return
	}

	resolved, err := s.guard.Resolve(userPath)
	if err != nil {
		WriteError(w, ErrValidation, err.Error(), http.StatusBadRequest)
		return
	}

	contents, err := storage.ReadDocument(resolved)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			WriteError(w, ErrNotFound, "file not found: "+userPath, http.StatusNotFound)
		case errors.Is(err, storage.ErrDocumentTooLarge):
			WriteError(w, ErrValidation, err.Error(), http.StatusRequestEntityTooLarge)
		default:
			WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"path":     userPath,
		"contents": contents,
	}, http.StatusOK)
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	g, err := s.currentGraph()
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	dot := render.ToDOT(g, renderOptions(r))
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	s.handleGraphImage(w, r, render.RenderSVG, "image/svg+xml")
}

func (s *Server) handleGraphPNG(w http.ResponseWriter, r *http.Request) {
	s.handleGraphImage(w, r, render.RenderPNG, "image/png")
}

func (s *Server) handleGraphImage(w http.ResponseWriter, r *http.Request, renderFn func(string) ([]byte, error), contentType string) {
	g, err := s.currentGraph()
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	img, err := renderFn(render.ToDOT(g, renderOptions(r)))
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(img)
}

// lookupNode resolves the {id} route parameter against the current graph,
// writing the error response itself when the node cannot be found.
func (s *Server) lookupNode(w http.ResponseWriter, r *http.Request) (*graph.Node, bool) {
	g, err := s.currentGraph()
	if err != nil {
		WriteError(w, ErrInternal, err.Error(), http.StatusInternalServerError)
		return nil, false
	}

	id := chi.URLParam(r, "id")
	n, ok := g.NodeByID(id)
	if !ok {
		WriteError(w, ErrNotFound, "no node with id "+id, http.StatusNotFound)
		return nil, false
	}
	return n, true
}

// renderOptions maps the horizontal and labels query flags onto render
// options for the image endpoints.
func renderOptions(r *http.Request) render.Options {
	var opts render.Options
	if v, err := strconv.ParseBool(r.URL.Query().Get("horizontal")); err == nil {
		opts.Horizontal = v
	}
	if v, err := strconv.ParseBool(r.URL.Query().Get("labels")); err == nil {
		opts.EdgeLabels = v
	}
	return opts
}
