package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/minter/models"
	"mintgate/internal/platform/middleware"
	registrymodels "mintgate/internal/registry/models"
	"mintgate/internal/settlement"
	"mintgate/internal/transport/http/shared"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Service is the dispatcher surface the admin handlers consume. The admin
// capability itself is checked by middleware; handlers assume it.
type Service interface {
	CreateProject(ctx context.Context, name string, artist domain.Address, currency domain.Currency, maxInvocations uint64, startingTokenID domain.TokenID) (*registrymodels.Project, error)
	BindPolicy(ctx context.Context, projectID domain.ProjectID, cfg models.PricingConfig) error
	RemovePolicy(ctx context.Context, projectID domain.ProjectID) error
	SetPricingConfig(ctx context.Context, projectID domain.ProjectID, cfg models.PricingConfig) error
	SetSplitConfig(ctx context.Context, projectID domain.ProjectID, entries []settlement.SplitEntry, defaultRecipient domain.Address) error
	SetPaused(ctx context.Context, projectID domain.ProjectID, paused bool) error
}

// Handler exposes the admin configuration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   Service
	validator middleware.AdminValidator
}

func New(service Service, validator middleware.AdminValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service, validator: validator}
}

// Register mounts the admin routes behind the admin capability check.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.RequireAdmin(h.validator, h.logger))
	adminRouter.Post("/projects", h.handleCreateProject)
	adminRouter.Post("/projects/{projectID}/policy", h.handleBindPolicy)
	adminRouter.Delete("/projects/{projectID}/policy", h.handleRemovePolicy)
	adminRouter.Put("/projects/{projectID}/pricing", h.handleSetPricing)
	adminRouter.Put("/projects/{projectID}/splits", h.handleSetSplits)
	adminRouter.Post("/projects/{projectID}/pause", h.handleSetPaused)

	r.Mount("/admin", adminRouter)
}

type createProjectRequest struct {
	Name            string          `json:"name"`
	ArtistAddress   domain.Address  `json:"artist_address"`
	Currency        domain.Currency `json:"currency,omitempty"`
	MaxInvocations  uint64          `json:"max_invocations"`
	StartingTokenID domain.TokenID  `json:"starting_token_id"`
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	project, err := h.service.CreateProject(r.Context(), req.Name, req.ArtistAddress, req.Currency, req.MaxInvocations, req.StartingTokenID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleBindPolicy(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var cfg models.PricingConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.BindPolicy(r.Context(), projectID, cfg); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "bound"})
}

func (h *Handler) handleRemovePolicy(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemovePolicy(r.Context(), projectID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) handleSetPricing(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var cfg models.PricingConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.SetPricingConfig(r.Context(), projectID, cfg); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type setSplitsRequest struct {
	Entries          []settlement.SplitEntry `json:"entries"`
	DefaultRecipient domain.Address          `json:"default_recipient"`
}

func (h *Handler) handleSetSplits(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req setSplitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.SetSplitConfig(r.Context(), projectID, req.Entries, req.DefaultRecipient); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type setPausedRequest struct {
	Paused bool `json:"paused"`
}

func (h *Handler) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req setPausedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.SetPaused(r.Context(), projectID, req.Paused); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (domain.ProjectID, bool) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid project id"))
		return domain.ProjectID{}, false
	}
	return projectID, true
}
