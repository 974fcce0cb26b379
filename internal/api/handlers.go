package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/unixdj/dynqr/internal/service"
	"github.com/unixdj/dynqr/store"
)

// IDHeader carries the identifier of a generated code.
const IDHeader = "X-QR-ID"

var errBadRequest = errors.New("bad request")

// Handler holds API route handlers.
type Handler struct {
	svc       *service.Service
	logger    *zap.Logger
	maxUpload int64
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service, logger *zap.Logger, maxUpload int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger, maxUpload: maxUpload}
}

// Generate handles POST /generate.  The form is urlencoded or
// multipart; the logo comes as the file field "logo".  The response is
// the PNG image with the new identifier in the X-QR-ID header.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := h.parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := generateRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := req.Params(h.svc.Defaults())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p.Logo = req.Logo

	id, png, err := h.svc.Generate(r.Context(), req.Data, req.Label, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set(IDHeader, strconv.Itoa(id))
	w.Header().Set("Location", "/codes/"+strconv.Itoa(id))
	writePNG(w, http.StatusCreated, png)
}

// ListCodes handles GET /codes.
func (h *Handler) ListCodes(w http.ResponseWriter, _ *http.Request) {
	recs := h.svc.List()
	resp := RecordListResponse{
		Records: make([]RecordResponse, len(recs)),
		Total:   len(recs),
	}
	for i, rec := range recs {
		resp.Records[i] = h.recordResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCode handles GET /codes/{id} and GET /edit/{id}.
func (h *Handler) GetCode(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.recordResponse(rec))
}

// UpdateCode handles PUT /codes/{id} with a JSON body.
func (h *Handler) UpdateCode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: invalid JSON: %w", errBadRequest, err))
		return
	}
	h.update(w, r, &req)
}

// EditCode handles POST /edit/{id} with a form.
func (h *Handler) EditCode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := h.parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.update(w, r, &RecordRequest{
		Data:  r.FormValue("data"),
		Label: formLabel(r.Form),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, req *RecordRequest) {
	id, err := recordID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// unknown ids are reported before a bad body
	if _, err := h.svc.Get(id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.Update(r.Context(), id, req.Data, req.Label)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.recordResponse(rec))
}

// CodeImage handles GET /codes/{id}/image.  The query may carry the
// style fields of /generate and target=redirect to encode the redirect
// URL instead of the data.
func (h *Handler) CodeImage(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	target, err := service.ParseTarget(q.Get("target"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	style, err := styleRequest(q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := style.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := style.Params(h.svc.Defaults())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	png, err := h.svc.Image(r.Context(), id, target, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePNG(w, http.StatusOK, png)
}

// Redirect handles GET /r/{id}: data that is an http or https URL is
// redirected to, anything else is returned as text.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if isWebURL(rec.Data) {
		http.Redirect(w, r, rec.Data, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rec.Data)
}

func (h *Handler) recordResponse(rec store.Record) RecordResponse {
	return RecordResponse{
		Record:      rec,
		ImageURL:    "/codes/" + strconv.Itoa(rec.ID) + "/image",
		RedirectURL: h.svc.RedirectURL(rec.ID),
	}
}

// parseForm parses an urlencoded or multipart form.
func (h *Handler) parseForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if ct == "multipart/form-data" {
		err = r.ParseMultipartForm(h.maxUpload)
	} else {
		err = r.ParseForm()
	}
	var mbe *http.MaxBytesError
	switch {
	case err == nil, errors.As(err, &mbe):
	case errors.Is(err, multipart.ErrMessageTooLarge):
		err = &http.MaxBytesError{Limit: h.maxUpload}
	default:
		err = fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return err
}

func generateRequest(r *http.Request) (*GenerateRequest, error) {
	style, err := styleRequest(r.Form)
	if err != nil {
		return nil, err
	}
	req := &GenerateRequest{
		StyleRequest: style,
		Data:         r.FormValue("data"),
		Label:        formLabel(r.Form),
	}
	f, _, err := r.FormFile("logo")
	switch {
	case err == nil:
		defer f.Close()
		if req.Logo, err = io.ReadAll(f); err != nil {
			return nil, fmt.Errorf("%w: logo: %w", errBadRequest, err)
		}
		if len(req.Logo) == 0 {
			req.Logo = nil
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, fmt.Errorf("%w: logo: %w", errBadRequest, err)
	}
	return req, nil
}

// styleRequest reads the style fields from form or query values.
func styleRequest(v url.Values) (StyleRequest, error) {
	s := StyleRequest{
		Level:   v.Get("level"),
		Color:   v.Get("color"),
		BgColor: v.Get("bg_color"),
		Style:   v.Get("style"),
	}
	var err error
	if s.Size, err = formInt(v, "size"); err != nil {
		return s, err
	}
	if s.LogoSize, err = formInt(v, "logo_size"); err != nil {
		return s, err
	}
	switch c := strings.ToLower(v.Get("caption")); c {
	case "", "0", "false", "off", "no":
	case "1", "true", "on", "yes":
		s.Caption = true
	default:
		return s, fmt.Errorf("%w: caption: %q is not a boolean", errBadRequest, c)
	}
	return s, nil
}

func formInt(v url.Values, key string) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", errBadRequest, key, s)
	}
	return n, nil
}

// formLabel returns the label, sent as "label" or "custom_text".
func formLabel(v url.Values) string {
	if l := v.Get("label"); l != "" {
		return l
	}
	return v.Get("custom_text")
}

// recordID returns the identifier in the URL.  Anything that is not a
// positive number names no record.
func recordID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func writePNG(w http.ResponseWriter, status int, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(png)
}

// writeError writes err as a JSON error with the status for its kind.
// Unclassified errors are logged and reported as internal.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		mbe  *http.MaxBytesError
		verr validation.Errors
	)
	switch {
	case errors.As(err, &mbe):
		writeJSON(w, http.StatusRequestEntityTooLarge,
			errorBody(fmt.Sprintf("request body larger than %d bytes", mbe.Limit),
				service.KindInvalidInput))
		return
	case errors.As(err, &verr), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error(), service.KindInvalidInput))
		return
	}
	switch kind := service.Kind(err); kind {
	case service.KindInvalidInput, service.KindDataTooLong, service.KindInvalidImage:
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error(), kind))
	case service.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody("QR code not found", kind))
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", kind))
	}
}
