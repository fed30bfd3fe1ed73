package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"mintgate/internal/minter/dispatcher"
	"mintgate/internal/minter/models"
	auctionstore "mintgate/internal/minter/store/auction"
	bindingstore "mintgate/internal/minter/store/binding"
	purchasestore "mintgate/internal/minter/store/purchase"
	quotastore "mintgate/internal/minter/store/quota"
	registrystore "mintgate/internal/registry/store"
	splitstore "mintgate/internal/settlement/store"
	"mintgate/pkg/domain"
	"mintgate/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	dispatcher *dispatcher.Dispatcher
	router     chi.Router
	now        time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.dispatcher = dispatcher.New(
		registrystore.NewMemory(),
		bindingstore.NewMemory(),
		purchasestore.NewMemory(),
		quotastore.NewMemory(),
		auctionstore.NewMemory(),
		splitstore.NewMemory(),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	// Pin the request clock the way the request-time middleware does.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), s.now)))
		})
	})
	New(s.dispatcher, logger).Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) createFixedPriceProject(price uint64) domain.ProjectID {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	project, err := s.dispatcher.CreateProject(ctx, "test", "artist", domain.CurrencyNative, 2, 0)
	s.Require().NoError(err)
	s.Require().NoError(s.dispatcher.BindPolicy(ctx, project.ID, models.PricingConfig{
		Kind:  models.PolicyFixedPrice,
		Fixed: &models.FixedConfig{Price: price},
	}))
	return project.ID
}

func (s *HandlerSuite) TestPurchase() {
	projectID := s.createFixedPriceProject(100)
	path := fmt.Sprintf("/projects/%s/purchase", projectID)

	s.Run("successful purchase returns the token", func() {
		rec := s.do(http.MethodPost, path, map[string]any{"purchaser": "alice", "payment": 100})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			TokenID   domain.TokenID `json:"token_id"`
			PricePaid uint64         `json:"price_paid"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(domain.TokenID(0), resp.TokenID)
		s.Equal(uint64(100), resp.PricePaid)
	})

	s.Run("underpayment is 402", func() {
		rec := s.do(http.MethodPost, path, map[string]any{"purchaser": "bob", "payment": 99})
		s.Equal(http.StatusPaymentRequired, rec.Code)
		s.Contains(rec.Body.String(), "insufficient_payment")
	})

	s.Run("sold out is 409", func() {
		rec := s.do(http.MethodPost, path, map[string]any{"purchaser": "bob", "payment": 100})
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, path, map[string]any{"purchaser": "carol", "payment": 100})
		s.Equal(http.StatusConflict, rec.Code)
		s.Contains(rec.Body.String(), "sold_out")
	})

	s.Run("malformed body is 400", func() {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("bad project id is 400", func() {
		rec := s.do(http.MethodPost, "/projects/not-a-uuid/purchase", map[string]any{"purchaser": "alice", "payment": 100})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown project is 404", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/purchase", domain.NewProjectID()),
			map[string]any{"purchaser": "alice", "payment": 100})
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestQuoteAndProjectViews() {
	projectID := s.createFixedPriceProject(250)

	s.Run("price endpoint returns the posted price", func() {
		rec := s.do(http.MethodGet, fmt.Sprintf("/projects/%s/price", projectID), nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var quote dispatcher.QuoteResult
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &quote))
		s.Equal(models.PolicyFixedPrice, quote.Kind)
		s.Equal(uint64(250), quote.Price)
	})

	s.Run("project endpoint returns issuance state", func() {
		rec := s.do(http.MethodGet, fmt.Sprintf("/projects/%s", projectID), nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"max_invocations":2`)
	})

	s.Run("purchase log lists sales in token order", func() {
		for _, purchaser := range []string{"alice", "bob"} {
			rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/purchase", projectID),
				map[string]any{"purchaser": purchaser, "payment": 250})
			s.Require().Equal(http.StatusOK, rec.Code)
		}

		rec := s.do(http.MethodGet, fmt.Sprintf("/projects/%s/purchases", projectID), nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var records []*models.PurchaseRecord
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &records))
		s.Require().Len(records, 2)
		s.Equal(domain.TokenID(0), records[0].TokenID)
		s.Equal(domain.TokenID(1), records[1].TokenID)
	})
}

func (s *HandlerSuite) bindAuction(projectID domain.ProjectID) {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	s.Require().NoError(s.dispatcher.BindPolicy(ctx, projectID, models.PricingConfig{
		Kind: models.PolicySequentialAuction,
		Auction: &models.AuctionConfig{
			StartTime:          s.now.Add(-time.Minute),
			EndTime:            s.now.Add(time.Hour),
			MinBidIncrementBps: 500,
		},
	}))
}

func (s *HandlerSuite) TestAuctionEndpoints() {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	project, err := s.dispatcher.CreateProject(ctx, "auction", "artist", domain.CurrencyNative, 2, 0)
	s.Require().NoError(err)
	s.bindAuction(project.ID)

	s.Run("bid is accepted with 202", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/bid", project.ID),
			map[string]any{"bidder": "alice", "amount": 100})
		s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

		var state models.AuctionState
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &state))
		s.Equal(uint64(100), state.HighBid)
	})

	s.Run("purchase against the auction is treated as a bid", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/purchase", project.ID),
			map[string]any{"purchaser": "bob", "payment": 200})
		s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

		var state models.AuctionState
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &state))
		s.Equal(uint64(200), state.HighBid)
	})

	s.Run("low bid is 409", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/bid", project.ID),
			map[string]any{"bidder": "carol", "amount": 201})
		s.Equal(http.StatusConflict, rec.Code)
		s.Contains(rec.Body.String(), "bid_too_low")
	})

	s.Run("finalize before end is 409", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/finalize", project.ID), nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("finalize after end settles", func() {
		s.now = s.now.Add(2 * time.Hour)
		rec := s.do(http.MethodPost, fmt.Sprintf("/projects/%s/finalize", project.ID), nil)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var state models.AuctionState
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &state))
		s.True(state.Settled)
		s.Equal(domain.Address("bob"), state.Winner)
		s.Equal(uint64(200), state.Clearing)
	})
}
