package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// createRequest is the body of POST /v1/layouts. Config fields that are
// absent keep the server defaults.
type createRequest struct {
	Title  string        `json:"title,omitempty"`
	Width  float64       `json:"width,omitempty"`
	Config mosaic.Config `json:"config"`
	Items  []mosaic.Item `json:"items"`
}

// refitRequest is the body of POST /v1/layouts/{id}/refit.
type refitRequest struct {
	Width float64 `json:"width"`
}

// contentTypes maps render suffixes to formats and MIME types.
var contentTypes = map[string]struct{ format, mime string }{
	".svg": {pipeline.FormatSVG, "image/svg+xml"},
	".png": {pipeline.FormatPNG, "image/png"},
	".txt": {pipeline.FormatText, "text/plain; charset=utf-8"},
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req := createRequest{Width: s.width, Config: s.config}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.compute(r, req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/layouts/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")
	id, ext := ref, ""
	if i := strings.LastIndexByte(ref, '.'); i > 0 {
		id, ext = ref[:i], ref[i:]
	}

	doc, err := s.runner.LoadDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if ext == "" || ext == ".json" {
		writeJSON(w, http.StatusOK, doc)
		return
	}

	ct, ok := contentTypes[ext]
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", strings.TrimPrefix(ext, ".")))
		return
	}
	opts := pipeline.Options{Formats: []string{ct.format}, Logger: s.logger}
	if q := r.URL.Query(); q.Get("labels") == "true" {
		opts.Labels = true
	}
	artifacts, err := s.runner.Render(r.Context(), doc, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", ct.mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[ct.format])
}

// handleRefit recomputes a stored layout at a new width, the server-side
// equivalent of a container resize. The document keeps its ID.
func (s *Server) handleRefit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req refitRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.runner.LoadDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	refit, err := s.compute(r, createRequest{
		Title:  doc.Title,
		Width:  req.Width,
		Config: doc.Config,
		Items:  itemsFromDocument(doc),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refit)
}

// compute lays out the request, assigns an ID and stores the document.
// A request carrying the ID of an existing document overwrites it.
func (s *Server) compute(r *http.Request, req createRequest) (document.Layout, error) {
	if len(req.Items) == 0 {
		return document.Layout{}, errors.Field(errors.ErrCodeInvalidInput, "items", "at least one item is required")
	}
	if err := pipeline.ValidateWidth(req.Width); err != nil {
		return document.Layout{}, err
	}
	// Absent fields were pre-filled with the server defaults, so a zero
	// here was sent explicitly and must not be defaulted away.
	if err := req.Config.Validate(); err != nil {
		return document.Layout{}, err
	}

	items, title, _, err := pipeline.LoadItems(pipeline.Options{Items: req.Items, Title: req.Title})
	if err != nil {
		return document.Layout{}, err
	}
	doc, err := s.runner.ComputeLayout(r.Context(), items, pipeline.Options{
		Title:  title,
		Width:  req.Width,
		Config: req.Config,
		Logger: s.logger,
	})
	if err != nil {
		return document.Layout{}, err
	}

	doc.ID = chi.URLParam(r, "id")
	if doc.ID == "" {
		doc.ID = s.newID()
	}
	if err := s.runner.SaveDocument(r.Context(), doc); err != nil {
		return document.Layout{}, err
	}
	return doc, nil
}

// itemsFromDocument returns the inputs of a stored document. Documents
// written without items are rebuilt from their tiles, with the resolved
// ratio standing in for the original hints.
func itemsFromDocument(doc document.Layout) []mosaic.Item {
	if len(doc.Items) > 0 {
		return doc.Items
	}
	items := make([]mosaic.Item, len(doc.Tiles))
	for i, t := range doc.Tiles {
		items[i] = mosaic.Item{ID: t.ID, AspectRatio: t.AspectRatio, Src: t.Src, Background: t.Background}
	}
	return items
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidManifest:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case "":
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{
		Code:    code,
		Field:   errors.GetField(err),
		Message: userMessage(err, status),
	})
}

func userMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return fmt.Sprintf("internal error: %s", http.StatusText(status))
	}
	return errors.UserMessage(err)
}
