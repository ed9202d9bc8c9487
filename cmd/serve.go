package main

import (
	"encoding/json"
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

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
	"github.com/gaen-tech/leadscout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalysis(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/api", func(r chi.Router) {
			r.Post("/analyze", handleAnalyze(env))
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", handleListLeads(env))
				r.Get("/{id}", handleGetLead(env))
				r.Patch("/{id}/status", handleSetLeadStatus(env))
				r.Delete("/{id}", handleDeleteLead(env))
			})
			r.Route("/personas", func(r chi.Router) {
				r.Get("/", handleListPersonas(env))
				r.Post("/", handleSavePersona(env))
				r.Get("/active", handleGetActivePersona(env))
				r.Put("/active", handleSetActivePersona(env))
				r.Delete("/{id}", handleDeletePersona(env))
			})
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", resolvePort()),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func resolvePort() int {
	if servePort != 0 {
		return servePort
	}
	return cfg.Server.Port
}

func handleAnalyze(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL  string `json:"url"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		company, err := model.CompanyFromURL(req.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unparseable url")
			return
		}
		if req.Name != "" {
			company.Name = req.Name
		}

		lead, err := env.Analyzer.Analyze(r.Context(), company)
		if err != nil {
			// Only cancellation reaches here.
			writeError(w, http.StatusServiceUnavailable, "analysis canceled")
			return
		}
		writeJSON(w, http.StatusOK, lead)
	}
}

func handleListLeads(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.LeadFilter{
			Status: model.LeadStatus(r.URL.Query().Get("status")),
		}
		if v := r.URL.Query().Get("min_score"); v != "" {
			score, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid min_score")
				return
			}
			filter.MinScore = score
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			filter.Limit = limit
		}

		leads, err := env.Store.ListLeads(r.Context(), filter)
		if err != nil {
			zap.L().Error("list leads failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list leads failed")
			return
		}
		if leads == nil {
			leads = []model.Lead{}
		}
		writeJSON(w, http.StatusOK, leads)
	}
}

func handleGetLead(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lead, err := env.Store.GetLead(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if eris.Is(err, store.ErrLeadNotFound) {
				writeError(w, http.StatusNotFound, "lead not found")
				return
			}
			zap.L().Error("get lead failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get lead failed")
			return
		}
		writeJSON(w, http.StatusOK, lead)
	}
}

func handleSetLeadStatus(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		status := model.LeadStatus(req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}

		id := chi.URLParam(r, "id")
		if err := env.Store.UpdateLeadStatus(r.Context(), id, status); err != nil {
			if eris.Is(err, store.ErrLeadNotFound) {
				writeError(w, http.StatusNotFound, "lead not found")
				return
			}
			zap.L().Error("update lead status failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "update failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
	}
}

func handleDeleteLead(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := env.Store.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
			if eris.Is(err, store.ErrLeadNotFound) {
				writeError(w, http.StatusNotFound, "lead not found")
				return
			}
			zap.L().Error("delete lead failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListPersonas(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Personas.All(r.Context()))
	}
}

func handleSavePersona(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg persona.IndustryConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := env.Personas.SaveCustom(r.Context(), cfg); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, cfg)
	}
}

func handleGetActivePersona(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Personas.Active(r.Context()))
	}
}

func handleSetActivePersona(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		cfg, ok := env.Personas.ByID(r.Context(), req.ID)
		if !ok {
			writeError(w, http.StatusNotFound, "persona not found")
			return
		}
		if !cfg.Enabled {
			writeError(w, http.StatusBadRequest, "persona is disabled")
			return
		}
		env.Personas.SetActive(r.Context(), cfg)
		writeJSON(w, http.StatusOK, cfg)
	}
}

func handleDeletePersona(env *analysisEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := env.Personas.DeleteCustom(r.Context(), chi.URLParam(r, "id"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case eris.Is(err, persona.ErrBuiltinConfig):
			writeError(w, http.StatusForbidden, "built-in personas cannot be deleted")
		case eris.Is(err, persona.ErrNotFound):
			writeError(w, http.StatusNotFound, "persona not found")
		default:
			zap.L().Error("delete persona failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "delete failed")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
