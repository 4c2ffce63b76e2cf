package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/model"
	"github.com/Drewraw/social-record-platform/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the profile API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initApp(ctx, "serve", true)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(env.Store, env.Service, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// urlBuilder builds a profile from a candidate page URL.
type urlBuilder interface {
	BuildURL(ctx context.Context, url string) (*model.ProfileRecord, error)
}

type api struct {
	store   store.Store
	builder urlBuilder
}

// newRouter wires the profile API routes.
func newRouter(st store.Store, b urlBuilder, origins []string) http.Handler {
	a := &api{store: st, builder: b}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", a.listProfiles)
		r.Post("/", a.createProfile)
		r.Get("/{id}", a.getProfile)
		r.Delete("/{id}", a.deleteProfile)
	})
	return r
}

func (a *api) listProfiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ProfileFilter{
		Name:  q.Get("name"),
		Party: q.Get("party"),
		State: q.Get("state"),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	profiles, err := a.store.ListProfiles(r.Context(), filter)
	if err != nil {
		zap.L().Error("list profiles failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if profiles == nil {
		profiles = []store.StoredProfile{}
	}
	writeResponse(w, http.StatusOK, profiles)
}

func (a *api) getProfile(w http.ResponseWriter, r *http.Request) {
	sp, err := a.store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		zap.L().Error("get profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get failed")
		return
	}
	writeResponse(w, http.StatusOK, sp)
}

func (a *api) createProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	rec, err := a.builder.BuildURL(r.Context(), req.URL)
	if err != nil {
		zap.L().Warn("build profile failed", zap.String("url", req.URL), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, document.ErrMalformedInput) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "build failed")
		return
	}
	sp, err := a.store.SaveProfile(r.Context(), rec)
	if err != nil {
		zap.L().Error("save profile failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeResponse(w, http.StatusCreated, sp)
}

func (a *api) deleteProfile(w http.ResponseWriter, r *http.Request) {
	err := a.store.DeleteProfile(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		zap.L().Error("delete profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
