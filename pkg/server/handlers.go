package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridkit/pkg/buildinfo"
	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
	"github.com/matzehuels/gridkit/pkg/records"
)

// =============================================================================
// Response Types
// =============================================================================

type groupJSON struct {
	Key    any         `json:"key"`
	Path   []any       `json:"path"`
	Level  int         `json:"level"`
	Field  string      `json:"field,omitempty"`
	Header string      `json:"header"`
	Rows   int         `json:"rows"`
	Open   bool        `json:"open"`
	Groups []groupJSON `json:"groups,omitempty"`
}

type itemJSON struct {
	Kind      grouping.ItemKind `json:"kind"`
	Level     int               `json:"level"`
	Path      []any             `json:"path,omitempty"`
	Header    string            `json:"header,omitempty"`
	ID        string            `json:"id,omitempty"`
	Data      map[string]any    `json:"data,omitempty"`
	Aggregate any               `json:"aggregate,omitempty"`
}

type columnJSON struct {
	Field string `json:"field"`
	Title string `json:"title,omitempty"`
	Width int    `json:"width"`
}

type layoutJSON struct {
	Mode    layout.Mode  `json:"mode"`
	Width   int          `json:"width"`
	Columns []columnJSON `json:"columns"`
	Total   int          `json:"total"`
	Slack   int          `json:"slack"`
}

type errorJSON struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func toGroupJSON(n *grouping.Node) groupJSON {
	g := groupJSON{
		Key:    n.Key(),
		Path:   n.Path(),
		Level:  n.Level(),
		Field:  n.Field(),
		Header: n.Header(),
		Rows:   n.RowCount(),
		Open:   n.Visible(),
	}
	for _, c := range n.SubGroups() {
		g.Groups = append(g.Groups, toGroupJSON(c))
	}
	return g
}

func toItemJSON(it grouping.Item) itemJSON {
	out := itemJSON{Kind: it.Kind, Level: it.Level, Header: it.Header, Aggregate: it.Aggregate}
	if it.Group != nil {
		out.Path = it.Group.Path()
	}
	if it.Row != nil {
		out.ID = it.Row.ID
		out.Data = it.Row.Data
	}
	return out
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []groupJSON{}
	for _, g := range s.engine.Tree().Groups() {
		out = append(out, toGroupJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path []any `json:"path"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.ToggleGroup(req.Path...); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupJSON(s.engine.GroupByPath(req.Path...)))
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.engine.DisplaySequence()
	out := make([]itemJSON, len(items))
	for i, it := range items {
		out[i] = toItemJSON(it)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	width := s.engine.Driver().Available()
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidWidth, "width %q is not an integer", v))
			return
		}
		if err := errors.ValidateWidth(n); err != nil {
			s.writeError(w, err)
			return
		}
		width = n
	}
	mode := s.engine.Driver().Mode()
	if v := r.URL.Query().Get("mode"); v != "" {
		m, err := layout.ParseMode(v)
		if err != nil {
			s.writeError(w, err)
			return
		}
		mode = m
	}

	cols := s.engine.Columns()
	alloc := s.engine.ComputeColumnWidths(cols, width, mode)
	out := layoutJSON{Mode: mode, Width: width, Columns: []columnJSON{}, Total: alloc.Total, Slack: alloc.Slack}
	for i, c := range cols {
		if c.Hidden {
			continue
		}
		out.Columns = append(out.Columns, columnJSON{Field: c.Field, Title: c.Title, Width: alloc.Widths[i]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := records.WriteGrouped(s.engine.Tree().GroupedData(), w); err != nil {
		s.logger.Error("export failed", "error", err)
	}
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if !s.decode(w, r, &data) {
		return
	}
	if data == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "record must be a JSON object"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row := records.NewRow(data, s.idField)
	if err := s.engine.NotifyRecordAdded(row); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": row.ID, "path": s.engine.Tree().ExpectedPath(row)})
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !s.decode(w, r, &values) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	moved, err := s.engine.NotifyRecordUpdated(chi.URLParam(r, "id"), values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

func (s *Server) handleRemoveRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.NotifyRecordRemoved(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Anchor string `json:"anchor"`
		After  bool   `json:"after"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.NotifyRecordMoved(chi.URLParam(r, "id"), req.Anchor, req.After); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

const maxBodyBytes = 1 << 20

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(errors.GetCode(err))
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorJSON{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeLookupMiss, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidWidth, errors.ErrCodeInvalidMode,
		errors.ErrCodeInvalidField, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeConfiguration, errors.ErrCodeConstraintUnsatisfiable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
