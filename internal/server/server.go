package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"vendorwatch/internal/analysis"
	"vendorwatch/internal/auth"
	"vendorwatch/internal/config"
	"vendorwatch/internal/database"
)

type Server struct {
	cfg      *config.Config
	db       *database.DB
	hub      *Hub
	auth     *auth.Service
	analyzer *analysis.Service
	bulk     *analysis.BulkRunner
	mux      *http.ServeMux
}

func New(cfg *config.Config, db *database.DB) *Server {
	hub := NewHub()
	analyzer := analysis.NewService(analysis.GeminiConfig{
		APIKey: cfg.Analysis.GeminiAPIKey,
		Model:  cfg.Analysis.GeminiModel,
	})

	s := &Server{
		cfg:      cfg,
		db:       db,
		hub:      hub,
		auth:     auth.NewService(db),
		analyzer: analyzer,
		bulk:     analysis.NewBulkRunner(analyzer, db, hub),
		mux:      http.NewServeMux(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	slog.Info("starting server", "addr", addr)

	handler := recoveryMiddleware(securityHeaders(loggingMiddleware(s.sessionMiddleware(s.mux))))
	return http.ListenAndServe(addr, handler)
}

func (s *Server) registerRoutes() {
	// Auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("/api/auth/me", s.handleMe)

	// Settings
	s.mux.HandleFunc("/api/settings", s.handleSettings)

	// Analysis
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/analyze/bulk", s.handleBulkAnalyze)

	// Reports
	s.mux.HandleFunc("/api/reports", s.handleReports)
	s.mux.HandleFunc("/api/reports/", s.handleReport)

	// Analytics
	s.mux.HandleFunc("/api/analytics", s.handleAnalytics)

	// WebSocket
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}
