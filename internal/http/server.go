package httpapp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/feedwire/feedwire/internal/auth"
	"github.com/feedwire/feedwire/internal/config"
	"github.com/feedwire/feedwire/internal/store"
	"github.com/feedwire/feedwire/internal/upload"

	_ "github.com/feedwire/feedwire/docs" // swagger docs

	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxUploadBytes bounds the in-memory part of multipart parsing.
const maxUploadBytes = 32 << 20

type Server struct {
	store  store.Store
	auth   *auth.Service
	saver  *upload.Saver
	cfg    config.Config
	logger zerolog.Logger
}

func NewServer(st store.Store, authSvc *auth.Service, cfg config.Config, logger zerolog.Logger) (*Server, error) {
	saver, err := upload.NewSaver(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	return &Server{store: st, auth: authSvc, saver: saver, cfg: cfg, logger: logger}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	defer func() {
		if v := recover(); v != nil {
			s.logger.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("request panicked")
			writeAppError(rec, errInternal(errors.New("panic")))
		}
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}()

	setCORSHeaders(rec)
	if r.Method == http.MethodOptions {
		rec.WriteHeader(http.StatusNoContent)
		return
	}

	s.route(rec, r)
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if strings.HasPrefix(path, "/swagger/") {
		httpSwagger.WrapHandler.ServeHTTP(w, r)
		return
	}
	if strings.HasPrefix(path, "/images/") {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.serveImage(w, r)
		return
	}

	segments := splitPath(path)

	switch {
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "signup":
		if r.Method == http.MethodPut {
			s.handleSignup(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "signin":
		if r.Method == http.MethodPost {
			s.handleSignin(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "feed" && segments[1] == "posts":
		if r.Method == http.MethodGet {
			s.handleListPosts(w, r)
			return
		}
	case len(segments) == 3 && segments[0] == "feed" && segments[1] == "post":
		if r.Method == http.MethodGet {
			s.handleGetPost(w, r, segments[2])
			return
		}
	case len(segments) == 2 && segments[0] == "feed" && segments[1] == "create-post":
		if r.Method == http.MethodPost {
			s.handleCreatePost(w, r)
			return
		}
	case len(segments) == 3 && segments[0] == "feed" && segments[1] == "edit-post":
		if r.Method == http.MethodPut {
			s.handleEditPost(w, r, segments[2])
			return
		}
	case len(segments) == 3 && segments[0] == "feed" && segments[1] == "delete-post":
		if r.Method == http.MethodDelete {
			s.handleDeletePost(w, r, segments[2])
			return
		}
	case len(segments) == 1 && segments[0] == "version":
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]any{"version": s.cfg.Version})
			return
		}
	}

	notFound(w)
}

// serveImage serves stored uploads read-only. Path traversal is cut off by
// reducing the request to its base name.
func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/images/"))
	if name == "." || name == "/" {
		notFound(w)
		return
	}
	full := filepath.Join(s.saver.Dir, name)
	if _, err := os.Stat(full); err != nil {
		notFound(w)
		return
	}
	http.ServeFile(w, r, full)
}

// requireAuth enforces the bearer guard. Every failure mode produces the
// same opaque 401.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (auth.Verified, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeAppError(w, errUnauthorized())
		return auth.Verified{}, false
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	verified, err := s.auth.Authenticate(bearer)
	if err != nil {
		writeAppError(w, errUnauthorized())
		return auth.Verified{}, false
	}
	return verified, true
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE")
	h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wrote {
		r.status = status
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, appErr *Error) {
	if appErr.Status == http.StatusInternalServerError && appErr.Err != nil {
		s.logger.Error().Err(appErr.Err).Msg("internal error")
	}
	writeAppError(w, appErr)
}

func writeAppError(w http.ResponseWriter, appErr *Error) {
	body := map[string]any{"message": appErr.Message}
	if len(appErr.Violations) > 0 {
		body["errors"] = appErr.Violations
	}
	writeJSON(w, appErr.Status, body)
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func notFound(w http.ResponseWriter) {
	writeAppError(w, errNotFound("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeAppError(w, &Error{Status: http.StatusMethodNotAllowed, Message: "method not allowed"})
}

func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return def
}

func parseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
