package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	sloghttp "github.com/samber/slog-http"
	"github.com/tgpulse/tgpulse/internal/modules/analytics"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// Server exposes the rendered analytics report and an RSS feed of
// matched posts over HTTP.
type Server struct {
	cfg       *config.Config
	store     storage.Store
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewServer(cfg *config.Config, store storage.Store, analyticsService *analytics.Service) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		analytics: analyticsService,
		logger:    slog.Default(),
	}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /feed", s.handleFeed)
	mux.HandleFunc("GET /health", s.handleHealth)

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// aggregate runs analytics over the default window ending now.
func (s *Server) aggregate(r *http.Request) (*analytics.Result, error) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		return nil, err
	}
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -s.cfg.WindowDays)
	return s.analytics.Aggregate(r.Context(), from, to, tags)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.aggregate(r)
	if err != nil {
		s.logger.Error("Error aggregating report", "error", err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(analytics.Render(result, s.cfg.SnippetLength)))
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	result, err := s.aggregate(r)
	if err != nil {
		s.logger.Error("Error aggregating feed", "error", err)
		http.Error(w, "Failed to build feed", http.StatusInternalServerError)
		return
	}

	feed := &feeds.Feed{
		Title:       "Matched channel posts",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s://%s/feed", getScheme(r), r.Host)},
		Description: fmt.Sprintf("Posts matching the configured tag list in the last %d days", s.cfg.WindowDays),
		Updated:     result.To,
	}
	for _, post := range result.Posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       analytics.Snippet(post.Message.Text, 100),
			Link:        &feeds.Link{Href: post.Link},
			Description: fmt.Sprintf("%s | tags: %v | views: %d", post.ChannelName, post.Tags, post.Message.Views),
			Created:     post.Message.PostedAt,
			Id:          fmt.Sprintf("%d-%d", post.Message.ChannelID, post.Message.MessageID),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
