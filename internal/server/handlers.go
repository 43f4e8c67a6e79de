package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/salhakar/doceditor"
	"github.com/salhakar/doceditor/internal/fileutil"
)

// Multipart field names.
const (
	fieldFile  = "file"
	fieldTitle = "title"
)

// documentView is the JSON shape of a session's current version.
type documentView struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Mode    string `json:"mode"`
	HTML    string `json:"html"`
}

// loadRequest is the JSON body of POST /api/documents.
type loadRequest struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

type formatRequest struct {
	Command string `json:"command"`
	Value   string `json:"value"`
}

type selectRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type inputRequest struct {
	HTML string `json:"html"`
}

// editorHandler handles a request for an existing session.
type editorHandler func(w http.ResponseWriter, r *http.Request, sess *session)

// withEditor resolves the session before calling h.
func (s *Server) withEditor(h editorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.lookup(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, sess)
	}
}

// handleCreate loads a document by path or URL (JSON body) or from an
// uploaded file (multipart) and opens a session on it.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var (
		doc *doceditor.Document
		err error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		doc, err = s.createFromUpload(w, r)
	} else {
		doc, err = s.createFromPath(r)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.open(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess, doc))
}

func (s *Server) createFromPath(r *http.Request) (*doceditor.Document, error) {
	var req loadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, badRequest(fmt.Errorf("decoding request: %w", err))
		}
	}
	if req.Path == "" {
		req.Path = r.URL.Query().Get("path")
	}
	if req.Title == "" {
		req.Title = r.URL.Query().Get("title")
	}
	if req.Path != "" && !s.cfg.AllowLocalFiles && !fileutil.IsURL(req.Path) {
		return nil, ErrLocalPathRefused
	}
	return s.cfg.Loader.Load(r.Context(), req.Path, req.Title)
}

func (s *Server) createFromUpload(w http.ResponseWriter, r *http.Request) (*doceditor.Document, error) {
	file, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}
	return s.cfg.Loader.Parse(r.Context(), file.Data, file.Name, r.FormValue(fieldTitle))
}

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, viewOf(sess, sess.editor.Document()))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.remove(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, _ *http.Request, sess *session) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; img-src data: https: http:; style-src 'unsafe-inline'")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, sess.editor.PreviewHTML())
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request, sess *session) {
	var req formatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(fmt.Errorf("decoding request: %w", err)))
		return
	}
	doc, err := sess.editor.ApplyFormat(r.Context(), doceditor.Command(req.Command), req.Value)
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, sess *session) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(fmt.Errorf("decoding request: %w", err)))
		return
	}
	doc, err := sess.editor.Select(r.Context(), req.Start, req.End)
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleCheckbox(w http.ResponseWriter, r *http.Request, sess *session) {
	doc, err := sess.editor.InsertCheckbox(r.Context())
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request, sess *session) {
	file, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := sess.editor.InsertImage(r.Context(), file)
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request, sess *session) {
	file, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := sess.editor.InsertSignature(r.Context(), file)
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, sess *session) {
	doc, err := sess.editor.TogglePreview(r.Context())
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request, sess *session) {
	var req inputRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, uploadError(err))
		return
	}
	doc, err := sess.editor.Input(r.Context(), req.HTML)
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request, sess *session) {
	doc, err := sess.editor.Sync(r.Context())
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, sess *session) {
	doc, err := sess.editor.Undo(r.Context())
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *session) {
	doc, err := sess.editor.Reset(r.Context())
	s.respond(w, r, sess, doc, err)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request, sess *session) {
	artifact, err := s.cfg.Exporters.Export(r.Context(), sess.editor.Document())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("document exported",
		"session", sess.id.String(),
		"file", artifact.Filename,
		"pages", artifact.Pages,
		"bytes", len(artifact.PDF))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.PDF)))
	w.Header().Set("X-Page-Count", strconv.Itoa(artifact.Pages))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.PDF)
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request, sess *session) {
	artifact, err := doceditor.ExportMarkdown(r.Context(), sess.editor.Document())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(artifact.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, artifact.Markdown)
}

// respond writes the resulting version or the error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session, doc *doceditor.Document, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess, doc))
}

// readUpload reads the multipart "file" field within the upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (doceditor.ImageFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return doceditor.ImageFile{}, uploadError(err)
	}
	f, header, err := r.FormFile(fieldFile)
	if err != nil {
		return doceditor.ImageFile{}, badRequest(fmt.Errorf("reading %q field: %w", fieldFile, err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return doceditor.ImageFile{}, uploadError(err)
	}
	return doceditor.ImageFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func viewOf(sess *session, doc *doceditor.Document) documentView {
	return documentView{
		ID:      sess.id.String(),
		Version: doc.Version,
		Title:   doc.Title,
		Source:  doc.Source,
		Mode:    sess.editor.Mode().String(),
		HTML:    doc.HTML,
	}
}

// attachment formats a Content-Disposition header for name.
func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return `attachment; filename="` + strings.Map(asciiOnly, name) + `"`
}

func asciiOnly(r rune) rune {
	if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
		return '_'
	}
	return r
}

// uploadError classifies body read failures.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &statusError{code: http.StatusRequestEntityTooLarge, err: err, limit: tooLarge.Limit}
	}
	return badRequest(err)
}
