package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/uidump/internal/hierarchy"
	"github.com/dgallion1/uidump/internal/query"
	"github.com/dgallion1/uidump/internal/report"
	"github.com/dgallion1/uidump/internal/store"
	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/go-chi/chi/v5"
)

// handleUpload loads a dump sent either as the raw request body or as the
// "file" field of a multipart form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	var (
		data     []byte
		filename string
		err      error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		filename = sanitizeFilename(header.Filename)
		data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
	} else {
		data, err = io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if name := r.URL.Query().Get("filename"); name != "" {
			filename = sanitizeFilename(name)
		}
	}

	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("dump exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		jsonError(w, "empty dump", http.StatusBadRequest)
		return
	}

	s.load(w, r, data, filename, "upload")
}

// handleCapture pulls a fresh dump from the connected device.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if s.capturer == nil {
		jsonError(w, "device capture unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.DeviceTimeout)
	defer cancel()

	start := time.Now()
	data, err := s.capturer.DumpHierarchy(ctx)
	if s.stats != nil {
		s.stats.Record(time.Since(start), err != nil)
	}
	if err != nil {
		s.log.Error("capture failed", "error", err)
		jsonError(w, "capture failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.load(w, r, data, "", "device")
}

// load parses data and stores the result. Identical content already in the
// store is returned as-is unless ?force=true.
func (s *Server) load(w http.ResponseWriter, r *http.Request, data []byte, filename, source string) {
	hash := store.ContentHashHex(data)
	force := r.URL.Query().Get("force") == "true"
	if !force {
		if existing := s.dumps.FindByHash(hash); existing != nil {
			writeDuplicate(w, existing)
			return
		}
	}

	strict := s.cfg.StrictBounds
	if v := r.URL.Query().Get("strict"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			strict = b
		}
	}

	id := store.NewID()
	log := s.log.With("dump_id", id, "source", source)
	tree, err := hierarchy.Parse(bytes.NewReader(data), hierarchy.Options{Strict: strict, Log: log})
	if err != nil {
		log.Warn("dump rejected", "error", err)
		code := http.StatusBadRequest
		if errors.Is(err, uinode.ErrInvalidBounds) {
			code = http.StatusUnprocessableEntity
		}
		jsonError(w, "parse dump: "+err.Error(), code)
		return
	}

	d := &store.Dump{
		ID:          id,
		Filename:    filename,
		Source:      source,
		ContentHash: hash,
		CreatedAt:   time.Now(),
		Tree:        tree,
	}
	if force {
		s.dumps.Put(d)
	} else if existing, stored := s.dumps.PutIfAbsentHash(d); !stored {
		// An identical upload finished parsing first.
		writeDuplicate(w, existing)
		return
	}
	log.Info("dump loaded", "nodes", tree.Len(), "warnings", len(tree.Warnings))

	writeJSON(w, http.StatusCreated, map[string]any{
		"duplicate": false,
		"dump":      d.Summary(),
	})
}

func writeDuplicate(w http.ResponseWriter, d *store.Dump) {
	writeJSON(w, http.StatusOK, map[string]any{
		"duplicate": true,
		"dump":      d.Summary(),
	})
}

func (s *Server) handleListDumps(w http.ResponseWriter, r *http.Request) {
	dumps := s.dumps.List()
	out := make([]store.Summary, 0, len(dumps))
	for _, d := range dumps {
		out = append(out, d.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"dumps": out})
}

func (s *Server) handleGetDump(w http.ResponseWriter, r *http.Request) {
	d := s.dump(w, r)
	if d == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dump":     d.Summary(),
		"document": query.Document(d.Tree),
	})
}

func (s *Server) handleDeleteDump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dumpID")
	if !s.dumps.Delete(id) {
		jsonError(w, "dump not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	d := s.dump(w, r)
	if d == nil {
		return
	}
	expr := r.URL.Query().Get("path")
	if expr == "" {
		jsonError(w, "path query parameter is required", http.StatusBadRequest)
		return
	}
	results, err := query.Run(d.Tree, expr)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if results == nil {
		results = []any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": expr, "results": results})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	d := s.dump(w, r)
	if d == nil {
		return
	}
	title := d.Filename
	if title == "" {
		title = "Dump " + d.ID
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, report.Markdown(d.Tree, title))
		return
	}
	out, err := report.HTML(d.Tree, title)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out)
}

// dump looks up {dumpID} and writes a 404 when it is unknown.
func (s *Server) dump(w http.ResponseWriter, r *http.Request) *store.Dump {
	d := s.dumps.Get(chi.URLParam(r, "dumpID"))
	if d == nil {
		jsonError(w, "dump not found", http.StatusNotFound)
	}
	return d
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
