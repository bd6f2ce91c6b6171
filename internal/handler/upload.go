package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/auth"
)

const (
	// MaxResumeBytes is the largest resume accepted.
	MaxResumeBytes = 5 << 20

	resumeField = "resume"
	resumePath  = "/uploads/resumes/"
)

// storedName matches the names UploadHandler generates: an xid plus one of
// the allowed extensions. Anything else in the URL is refused before the
// file system is touched.
var storedName = regexp.MustCompile(`^[0-9a-v]{20}\.(pdf|docx?)$`)

// Magic numbers for the accepted formats. A .docx is a zip archive and a
// legacy .doc is an OLE2 compound file.
var signatures = map[string][]byte{
	".pdf":  []byte("%PDF-"),
	".docx": {'P', 'K', 0x03, 0x04},
	".doc":  {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
}

// UploadHandler stores resumes on disk and serves them back through signed
// links.
type UploadHandler struct {
	dir    string
	links  *auth.LinkSigner
	logger *slog.Logger
}

// NewUploadHandler creates the resumes directory under uploadDir if needed.
func NewUploadHandler(uploadDir string, links *auth.LinkSigner, logger *slog.Logger) (*UploadHandler, error) {
	dir := filepath.Join(uploadDir, "resumes")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &UploadHandler{dir: dir, links: links, logger: logger}, nil
}

type uploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// HandleUploadResume accepts a multipart form with a single "resume" file.
// The stored name is generated; the client's file name only contributes its
// extension.
//
// HTTP: POST /api/uploads/resume
func (h *UploadHandler) HandleUploadResume(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxResumeBytes+64<<10)
	file, header, err := r.FormFile(resumeField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, h.logger, apperror.ValidationFailed(resumeField, "resume must be 5 MB or smaller"))
			return
		}
		writeError(w, r, h.logger, apperror.ValidationFailed(resumeField, "resume file is required"))
		return
	}
	defer file.Close()

	if header.Size > MaxResumeBytes {
		writeError(w, r, h.logger, apperror.ValidationFailed(resumeField, "resume must be 5 MB or smaller"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	magic, ok := signatures[ext]
	if !ok {
		writeError(w, r, h.logger, apperror.ValidationFailed(resumeField, "resume must be a PDF, DOC or DOCX file"))
		return
	}

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(file, head); err != nil || !bytes.Equal(head, magic) {
		writeError(w, r, h.logger, apperror.ValidationFailed(resumeField, "file content does not match its extension"))
		return
	}

	name := xid.New().String() + ext
	size, err := h.save(name, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("resume uploaded", slog.String("file", name), slog.Int64("bytes", size))
	writeJSON(w, http.StatusCreated, uploadResponse{
		URL:      resumePath + name,
		FileName: name,
		Size:     size,
	})
}

// save writes to a temp file first so a half-written upload never shows up
// under its final name.
func (h *UploadHandler) save(name string, src io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(h.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(src, MaxResumeBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("writing upload: %w", err)
	}
	if n > MaxResumeBytes {
		return 0, apperror.ValidationFailed(resumeField, "resume must be 5 MB or smaller")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(h.dir, name)); err != nil {
		return 0, fmt.Errorf("storing upload: %w", err)
	}
	return n, nil
}

// HandleServeResume streams a stored resume to whoever holds a valid link.
//
// HTTP: GET /uploads/resumes/{name}?token=...
func (h *UploadHandler) HandleServeResume(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !storedName.MatchString(name) {
		writeError(w, r, h.logger, apperror.NotFound("resume", name))
		return
	}

	subject, err := h.links.Verify(r.URL.Query().Get("token"))
	if err != nil || subject != name {
		if errors.Is(err, auth.ErrLinkExpired) {
			writeError(w, r, h.logger, apperror.Forbidden("This link has expired"))
			return
		}
		writeError(w, r, h.logger, apperror.Forbidden("Invalid or missing link token"))
		return
	}

	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, r, h.logger, apperror.NotFound("resume", name))
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	http.ServeFile(w, r, path)
}
