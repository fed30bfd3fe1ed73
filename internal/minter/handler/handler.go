package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/minter/dispatcher"
	"mintgate/internal/minter/merkle"
	"mintgate/internal/minter/models"
	registrymodels "mintgate/internal/registry/models"
	"mintgate/internal/transport/http/shared"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/requestcontext"
)

// Service is the dispatcher surface the public handlers consume.
type Service interface {
	Purchase(ctx context.Context, projectID domain.ProjectID, req dispatcher.PurchaseRequest) (*dispatcher.PurchaseOutcome, error)
	Bid(ctx context.Context, projectID domain.ProjectID, bidder domain.Address, amount uint64) (*models.AuctionState, error)
	Finalize(ctx context.Context, projectID domain.ProjectID) (*models.AuctionState, error)
	Quote(ctx context.Context, projectID domain.ProjectID) (*dispatcher.QuoteResult, error)
	GetProject(ctx context.Context, projectID domain.ProjectID) (*registrymodels.Project, error)
	ListPurchases(ctx context.Context, projectID domain.ProjectID) ([]*models.PurchaseRecord, error)
}

// Handler exposes the public purchase endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the public routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/projects/{projectID}/purchase", h.handlePurchase)
	r.Post("/projects/{projectID}/bid", h.handleBid)
	r.Post("/projects/{projectID}/finalize", h.handleFinalize)
	r.Get("/projects/{projectID}/price", h.handleQuote)
	r.Get("/projects/{projectID}/purchases", h.handleListPurchases)
	r.Get("/projects/{projectID}", h.handleGetProject)
}

type purchaseRequest struct {
	Purchaser         domain.Address `json:"purchaser"`
	Payment           uint64         `json:"payment"`
	Proof             []merkle.Hash  `json:"proof,omitempty"`
	QualifyingTokenID uint64         `json:"qualifying_token_id,omitempty"`
}

type purchaseResponse struct {
	TokenID   domain.TokenID `json:"token_id"`
	PricePaid uint64         `json:"price_paid"`
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	outcome, err := h.service.Purchase(ctx, projectID, dispatcher.PurchaseRequest{
		Purchaser:         req.Purchaser,
		Payment:           req.Payment,
		Proof:             req.Proof,
		QualifyingTokenID: req.QualifyingTokenID,
	})
	if err != nil {
		h.logRejection(ctx, "purchase rejected", err)
		shared.WriteError(w, err)
		return
	}

	if outcome.Bid != nil {
		// Sequential auction: the payment was accepted as a bid.
		shared.WriteJSON(w, http.StatusAccepted, outcome.Bid)
		return
	}
	shared.WriteJSON(w, http.StatusOK, purchaseResponse{
		TokenID:   outcome.Record.TokenID,
		PricePaid: outcome.Record.PricePaid,
	})
}

type bidRequest struct {
	Bidder domain.Address `json:"bidder"`
	Amount uint64         `json:"amount"`
}

func (h *Handler) handleBid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	state, err := h.service.Bid(ctx, projectID, req.Bidder, req.Amount)
	if err != nil {
		h.logRejection(ctx, "bid rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, state)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	state, err := h.service.Finalize(ctx, projectID)
	if err != nil {
		h.logRejection(ctx, "finalize rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	quote, err := h.service.Quote(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, quote)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.GetProject(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListPurchases(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (domain.ProjectID, bool) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid project id"))
		return domain.ProjectID{}, false
	}
	return projectID, true
}

func (h *Handler) logRejection(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
