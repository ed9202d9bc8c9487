package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
	"github.com/gaen-tech/leadscout/internal/store"
)

func newTestEnv(t *testing.T) *analysisEnv {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	return &analysisEnv{
		Store:    st,
		Personas: persona.NewStore(st),
	}
}

func newTestRouter(env *analysisEnv) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
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
	return r
}

func seedLead(t *testing.T, env *analysisEnv, id string, score float64) {
	t.Helper()
	require.NoError(t, env.Store.SaveLead(context.Background(), &model.Lead{
		ID:      id,
		Company: model.Company{Name: "Acme", Website: "acme.com"},
		Analysis: model.AnalysisResult{
			OpportunityScore: score,
			KeyOpportunities: []model.OpportunityDetail{{
				Opportunity: "A", Problem: "p", Solution: "s", EstimatedImpact: 1000,
			}},
			EstimatedAnnualROI: 1000,
		},
		Status:    model.LeadStatusProspected,
		CreatedAt: time.Now().UTC(),
	}))
}

func TestServe_GetLead(t *testing.T) {
	env := newTestEnv(t)
	seedLead(t, env, "lead-1", 80)
	router := newTestRouter(env)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/lead-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var lead model.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, "Acme", lead.Company.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_ListLeads_MinScore(t *testing.T) {
	env := newTestEnv(t)
	seedLead(t, env, "lead-1", 90)
	seedLead(t, env, "lead-2", 40)
	router := newTestRouter(env)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/?min_score=80", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var leads []model.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "lead-1", leads[0].ID)
}

func TestServe_SetLeadStatus(t *testing.T) {
	env := newTestEnv(t)
	seedLead(t, env, "lead-1", 80)
	router := newTestRouter(env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/leads/lead-1/status",
		strings.NewReader(`{"status":"qualified"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	lead, err := env.Store.GetLead(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusQualified, lead.Status)

	// Invalid status is rejected before touching the store.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/leads/lead-1/status",
		strings.NewReader(`{"status":"bogus"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_DeleteLead(t *testing.T) {
	env := newTestEnv(t)
	seedLead(t, env, "lead-1", 80)
	router := newTestRouter(env)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/leads/lead-1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/leads/lead-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_PersonaLifecycle(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)

	// Built-ins are present.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/personas/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var configs []persona.IndustryConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &configs))
	assert.GreaterOrEqual(t, len(configs), 2)

	// Save a custom persona.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/personas/",
		strings.NewReader(`{"id":"veterinary","name":"Veterinary","system_prompt":"p","enabled":true}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Activate it.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/personas/active",
		strings.NewReader(`{"id":"veterinary"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/personas/active", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var active persona.IndustryConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Equal(t, "veterinary", active.ID)

	// Built-ins cannot be deleted.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/personas/"+persona.DefaultID, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Custom personas can.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/personas/veterinary", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServe_SavePersona_RejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/personas/",
		strings.NewReader(`{"id":"","name":"No ID"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
