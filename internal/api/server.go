// Package api exposes the analysis engine over HTTP: upload a packaged
// extension, get back the full analysis as JSON.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crxaudit/crxaudit-cli/internal/analyzer"
	"github.com/crxaudit/crxaudit-cli/internal/api/middleware"
	"github.com/crxaudit/crxaudit-cli/internal/shared/constants"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AnalyzeFunc runs one analysis over raw package bytes. Wired to
// analyzer.Analyze in production, replaceable in tests.
type AnalyzeFunc func(pkg []byte) (*analyzer.Result, error)

type Config struct {
	Analyze        AnalyzeFunc
	AuthToken      string // empty disables auth
	Logger         *zap.Logger
	RateLimit      int // requests per second per client IP, 0 disables
	RateBurst      int
	MaxUploadBytes int64 // 0 falls back to constants.MaxUploadBytes
}

type Server struct {
	cfg      Config
	mux      *http.ServeMux
	limiters *limiterMap
}

func NewServer(cfg Config) *Server {
	if cfg.Analyze == nil {
		cfg.Analyze = func(pkg []byte) (*analyzer.Result, error) {
			return analyzer.Analyze(pkg, nil)
		}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = constants.MaxUploadBytes
	}

	srv := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		limiters: newLimiterMap(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := middleware.RequestID(s.withLogging(s.withRateLimit(s.mux)))
	handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Handle("/api/v1/analyze", s.withAuth(http.HandlerFunc(s.handleAnalyze)))
	s.mux.Handle("/api/v1/healthz", http.HandlerFunc(s.handleHealthz))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts the packaged extension either as a multipart
// form field named "package" or as the raw request body.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	pkg, err := s.readPackage(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	result, err := s.cfg.Analyze(pkg)
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	if s.cfg.Logger != nil {
		s.requestLogger(r).Info("analysis_complete",
			zap.String("name", result.Name),
			zap.Int("risk_score", result.RiskScore),
			zap.String("risk_level", result.RiskLevel.String()),
			zap.Duration("duration", time.Since(start)),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) readPackage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("package")
		if err != nil {
			return nil, errors.New("multipart upload requires a \"package\" file field")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	pkg, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(pkg) == 0 {
		return nil, errors.New("empty request body")
	}
	return pkg, nil
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		// Constant-time comparison to avoid leaking the token length class.
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		limiter := s.limiters.get(clientIP(r), s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			if s.cfg.Logger != nil {
				s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP(r)))
			}
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	if s.cfg.Logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.requestLogger(r).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	logger := s.cfg.Logger
	if id := middleware.GetRequestID(r.Context()); id != "" {
		logger = logger.With(zap.String("request_id", id))
	}
	return logger
}

func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
		if idx := strings.Index(forwarded, ","); idx > 0 {
			ip = forwarded[:idx]
		}
		return strings.TrimSpace(ip)
	}
	if idx := strings.LastIndex(ip, ":"); idx > 0 {
		ip = ip[:idx]
	}
	return ip
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if s.cfg.Logger != nil && status >= 500 {
		s.requestLogger(r).Error("request_failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// limiterMap keeps one token bucket per client IP.
type limiterMap struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newLimiterMap() *limiterMap {
	return &limiterMap{limiters: make(map[string]*rate.Limiter)}
}

func (m *limiterMap) get(ip string, rps, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = rps
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.limiters[ip]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	m.limiters[ip] = l
	return l
}
