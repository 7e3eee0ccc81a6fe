package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/logging"
	"github.com/aretw0/props/pkg/ports"
	"github.com/aretw0/props/pkg/records"
	"github.com/aretw0/props/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 4 << 20

// Server exposes a registry of models over HTTP: describing models,
// decoding payloads and, with a records manager, storing instances.
type Server struct {
	Codec   *props.Codec
	Records *records.Manager
	Version string

	trusted bool
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithRecords enables the /records endpoints.
func WithRecords(mgr *records.Manager) Option {
	return func(s *Server) {
		s.Records = mgr
	}
}

// WithTrustedInput makes POST /decode honour class tags in request bodies.
// Only use it when every client is trusted; clients cannot request trust.
func WithTrustedInput() Option {
	return func(s *Server) {
		s.trusted = true
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by /info and the OpenAPI document.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// NewHandler creates the HTTP handler for codec and its registry.
func NewHandler(codec *props.Codec, opts ...Option) http.Handler {
	s := &Server{
		Codec:   codec,
		Version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/models", s.ListModels)
	r.Get("/models/{name}", s.GetModel)
	r.Post("/models/{name}/decode", s.DecodeAs)
	r.Post("/decode", s.Decode)

	if s.Records != nil {
		r.Get("/records", s.ListRecords)
		r.Get("/records/{id}", s.GetRecord)
		r.Put("/records/{id}", s.PutRecord)
		r.Delete("/records/{id}", s.DeleteRecord)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>props models</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	// Details lists individual validation failures, if any.
	Details []string `json:"details,omitempty"`
}

// ObjectResponse describes a decoded object.
type ObjectResponse struct {
	// Model is the resolved model name, empty for generic objects.
	Model    string          `json:"model,omitempty"`
	Resolved bool            `json:"resolved"`
	Object   map[string]any  `json:"object"`
	Warnings []props.Warning `json:"warnings,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":      "props",
		"version":   s.Version,
		"models":    s.Codec.Registry().Len(),
		"class_key": s.Codec.ClassKey(),
		"trusted":   s.trusted,
		"records":   s.Records != nil,
	})
}

// GetOpenAPI handles GET /openapi.json.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := schema.OpenAPI(s.Codec.Registry(), s.Codec.ClassKey(), "props models", s.Version)
	s.writeJSON(w, http.StatusOK, doc)
}

// ListModels handles GET /models.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, schema.DescribeRegistry(s.Codec.Registry()))
}

// GetModel handles GET /models/{name}.
func (s *Server) GetModel(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, schema.Describe(m))
}

// DecodeAs handles POST /models/{name}/decode. The model is named by the
// path, so no trust is needed and the body's class tag is ignored.
func (s *Server) DecodeAs(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	inst, err := s.Codec.UnmarshalAs(m, body)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeObject(w, http.StatusOK, inst, nil)
}

// Decode handles POST /decode. Class tags are only honoured when the server
// was created WithTrustedInput; otherwise the result is generic and the
// response carries the fallback warning.
func (s *Server) Decode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var warnings props.WarningRecorder
	obj, err := s.Codec.Unmarshal(body, props.WithTrust(s.trusted), props.OnWarning(warnings.Record))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeObject(w, http.StatusOK, obj, warnings.Warnings())
}

// ListRecords handles GET /records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Records.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

// GetRecord handles GET /records/{id}[?model=Name].
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if name := r.URL.Query().Get("model"); name != "" {
		m, found := s.Codec.Registry().Lookup(name)
		if !found {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", schema.ErrUnknownModel, name))
			return
		}
		inst, err := s.Records.Load(r.Context(), id, m)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		s.writeObject(w, http.StatusOK, inst, nil)
		return
	}

	var warnings props.WarningRecorder
	obj, err := s.Records.LoadAny(r.Context(), id, props.OnWarning(warnings.Record))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeObject(w, http.StatusOK, obj, warnings.Warnings())
}

// PutRecord handles PUT /records/{id}?model=Name. The body is decoded as the
// named model, validated and stored.
func (s *Server) PutRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("model")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("query parameter 'model' is required"))
		return
	}
	m, found := s.Codec.Registry().Lookup(name)
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", schema.ErrUnknownModel, name))
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	inst, err := s.Codec.UnmarshalAs(m, body)
	if err == nil {
		err = inst.Validate()
	}
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if err := s.Records.Save(r.Context(), id, inst); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("record saved", "id", id, "model", name)
	s.writeObject(w, http.StatusOK, inst, nil)
}

// DeleteRecord handles DELETE /records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.Records.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) model(w http.ResponseWriter, r *http.Request) (*props.Model, bool) {
	name := chi.URLParam(r, "name")
	m, ok := s.Codec.Registry().Lookup(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", schema.ErrUnknownModel, name))
	}
	return m, ok
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return nil, false
	}
	if len(body) > MaxBodyBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return nil, false
	}
	return body, true
}

func (s *Server) writeObject(w http.ResponseWriter, status int, obj props.Object, warnings []props.Warning) {
	resp := ObjectResponse{Warnings: warnings}
	switch o := obj.(type) {
	case *props.Instance:
		data, err := s.Codec.Serialize(o)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.Model, resp.Resolved, resp.Object = o.ModelName(), true, data
	case *props.Unresolved:
		resp.Object = o.Fields
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	resp := ErrorResponse{Error: err.Error()}
	for _, e := range props.ValidationErrors(err) {
		resp.Details = append(resp.Details, e.Error())
	}
	s.writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, schema.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, props.ErrNotMapping),
		errors.Is(err, props.ErrInvalidValue),
		errors.Is(err, props.ErrNoUnionMatch),
		errors.Is(err, props.ErrMaxDepth):
		return http.StatusUnprocessableEntity
	case errors.Is(err, props.ErrInvalidJSON):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
