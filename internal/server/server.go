// Package server exposes the chat orchestrator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dream-ai/bp-assistant/internal/chat"
	"github.com/dream-ai/bp-assistant/internal/llm"
)

const (
	// QuotaExceededMessage is shown when the model quota is still exhausted after retrying
	QuotaExceededMessage = "【系統提示】目前配額用完，請約 30 秒後再次送出訊息。"

	// GenericFailureMessage is shown for every other failure
	GenericFailureMessage = "伺服器暫時無法回應。"

	// InvalidRequestMessage is shown when the body is not a chat request
	InvalidRequestMessage = "請求格式錯誤，請提供 message。"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Turner answers one chat message
type Turner interface {
	Turn(ctx context.Context, req chat.Request) (string, error)
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

type chatResponse struct {
	Text string `json:"text"`
}

// Server serves POST /chat, GET /healthz and optionally a static directory
type Server struct {
	turner    Turner
	staticDir string
	logger    *slog.Logger
	mux       *http.ServeMux
}

// Option configures a Server
type Option func(*Server)

// WithStaticDir serves files from dir at /. Missing directories are skipped.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.With("component", "http")
		}
	}
}

// New builds the HTTP handler around turner
func New(turner Turner, opts ...Option) *Server {
	s := &Server{
		turner: turner,
		logger: slog.Default().With("component", "http"),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.staticDir != "" {
		if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
			s.mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
		} else {
			s.logger.Warn("static directory not found, skipping", "dir", s.staticDir)
		}
	}
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Debug("rejected chat request", "err", err)
		writeJSON(w, http.StatusBadRequest, InvalidRequestMessage)
		return
	}

	start := time.Now()
	answer, err := s.turner.Turn(r.Context(), chat.Request{Message: req.Message, UserID: req.UserID})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			writeJSON(w, http.StatusBadRequest, InvalidRequestMessage)
		case llm.IsRateLimited(err):
			s.logger.Warn("model quota exhausted", "user_id", req.UserID, "err", err)
			writeJSON(w, http.StatusTooManyRequests, QuotaExceededMessage)
		default:
			s.logger.Error("chat turn failed", "user_id", req.UserID, "err", err)
			writeJSON(w, http.StatusInternalServerError, GenericFailureMessage)
		}
		return
	}

	s.logger.Info("chat turn completed", "user_id", req.UserID, "duration", time.Since(start))
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(chatResponse{Text: text})
}
