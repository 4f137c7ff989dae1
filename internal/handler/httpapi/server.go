package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/internal/handler/tools"
	"github.com/thinko/swinelink/pkg/storage"
)

const (
	serviceName    = "swinelink MCP server"
	serviceVersion = "1.1.0"

	shutdownTimeout = 5 * time.Second
	maxRequestBody  = 1 << 20

	// timestampLayout matches JavaScript's Date.toISOString
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type contextKey string

const apiKeyContextKey contextKey = "api_key"

// invokeRequest is the body of POST /mcp/invoke
type invokeRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// Server represents the HTTP tool proxy
type Server struct {
	registry *tools.Registry
	apiKeys  *APIKeyStore
	addr     string
	logger   hclog.Logger
	now      func() time.Time
	srv      *http.Server
}

// NewServer creates a new HTTP server listening on port
func NewServer(registry *tools.Registry, apiKeys *APIKeyStore, port string, logger hclog.Logger) *Server {
	if port == "" {
		port = "3000"
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Server{
		registry: registry,
		apiKeys:  apiKeys,
		addr:     net.JoinHostPort("", port),
		logger:   logger,
		now:      time.Now,
	}
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with request IDs applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("/", s.handleHealth)

	// Tool routes (require a key when any are configured)
	mux.HandleFunc("/mcp/manifest", s.authMiddleware(s.handleManifest))
	mux.HandleFunc("/mcp/tools", s.authMiddleware(s.handleTools))
	mux.HandleFunc("/mcp/invoke", s.authMiddleware(s.handleInvoke))

	// Management routes (require management key)
	mux.HandleFunc("/admin/keys", s.managementOnly(s.handleManageKeys))
	mux.HandleFunc("/admin/keys/generate", s.managementOnly(s.handleGenerateKey))

	return s.requestID(mux)
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.addr, "tools", len(s.registry.Tools()))
	s.logger.Info("manifest available", "url", "http://localhost"+s.addr+"/mcp/manifest")
	if !s.apiKeys.Required() {
		s.logger.Warn("no API keys configured, tool routes are open")
	}
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("stopping HTTP server")
	return s.srv.Shutdown(ctx)
}

// requestID tags every request and response with an X-Request-ID
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API keys when the store requires them
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.apiKeys.Required() {
			next(w, r)
			return
		}
		s.authenticate(next)(w, r)
	}
}

// managementOnly requires the management key
func (s *Server) managementOnly(next http.HandlerFunc) http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		keyInfo := keyFromContext(r.Context())
		if !s.apiKeys.IsManagement(keyInfo) {
			s.writeError(w, http.StatusForbidden, "Management key required")
			return
		}
		next(w, r)
	})
}

func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeError(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			s.writeError(w, http.StatusUnauthorized, "Invalid Authorization format. Use: Bearer <token>")
			return
		}

		keyInfo, valid := s.apiKeys.Validate(strings.TrimSpace(parts[1]))
		if !valid {
			s.writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyContextKey, keyInfo)
		next(w, r.WithContext(ctx))
	}
}

// handleHealth handles GET /
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"status":  "running",
		"version": serviceVersion,
		"tools":   len(s.registry.Tools()),
		"endpoints": map[string]string{
			"manifest": "/mcp/manifest",
			"tools":    "/mcp/tools",
			"invoke":   "/mcp/invoke",
		},
	})
}

// handleManifest handles GET /mcp/manifest
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	list := make([]map[string]any, 0, len(s.registry.Tools()))
	for _, t := range s.registry.Tools() {
		list = append(list, map[string]any{
			"id":          t.Name,
			"name":        t.Title,
			"description": t.Description,
			"parameters":  t.InputSchema,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":        "swinelink",
		"version":     serviceVersion,
		"description": "Expose Porkbun.com domain API as MCP tools",
		"tools":       list,
	})
}

// handleTools handles GET /mcp/tools
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	list := make([]map[string]any, 0, len(s.registry.Tools()))
	for _, t := range s.registry.Tools() {
		list = append(list, map[string]any{
			"id":             t.Name,
			"name":           t.Title,
			"description":    t.Description,
			"requiredParams": t.Required(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tools": list})
}

// handleInvoke handles POST /mcp/invoke
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req invokeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	result, err := s.registry.Call(r.Context(), req.Tool, req.Arguments)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTool) {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{
				"success":        false,
				"error":          "Unknown tool: " + req.Tool,
				"availableTools": s.registry.Names(),
			})
			return
		}

		status := statusFor(err)
		s.logger.Warn("tool failed", "tool", req.Tool, "status", status, "error", err)
		s.writeJSON(w, status, map[string]any{
			"success":   false,
			"tool":      req.Tool,
			"error":     errorBody(err),
			"timestamp": s.now().UTC().Format(timestampLayout),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tool":    req.Tool,
		"result":  result,
	})
}

// handleManageKeys handles GET /admin/keys and DELETE /admin/keys?key=...
func (s *Server) handleManageKeys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		keys, err := s.apiKeys.ListKeys()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeSuccess(w, keys)
	case http.MethodDelete:
		key := r.URL.Query().Get("key")
		if key == "" {
			s.writeError(w, http.StatusBadRequest, "Missing 'key' query parameter")
			return
		}
		if err := s.apiKeys.RevokeKey(key); err != nil {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeSuccess(w, map[string]string{"message": "API key revoked"})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleGenerateKey handles POST /admin/keys/generate
func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		req.Name = generatedKeyName
	}

	key, err := s.apiKeys.GenerateKey(req.Name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeSuccess(w, map[string]string{
		"key":  key.Key,
		"name": key.Name,
	})
}

// statusFor maps a failed tool call to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDomain), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// errorBody prefers the upstream response body over the error message
func errorBody(err error) any {
	var re domain.ResponseError
	if errors.As(err, &re) {
		if data := re.ResponseData(); len(data) > 0 {
			return data
		}
	}
	return err.Error()
}

func keyFromContext(ctx context.Context) *storage.APIKey {
	info, _ := ctx.Value(apiKeyContextKey).(*storage.APIKey)
	return info
}

// writeJSON writes v with the given status
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeSuccess writes a success response
func (s *Server) writeSuccess(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}
