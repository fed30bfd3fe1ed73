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

	"mintgate/internal/adminauth"
	"mintgate/internal/minter/dispatcher"
	auctionstore "mintgate/internal/minter/store/auction"
	bindingstore "mintgate/internal/minter/store/binding"
	purchasestore "mintgate/internal/minter/store/purchase"
	quotastore "mintgate/internal/minter/store/quota"
	registrymodels "mintgate/internal/registry/models"
	registrystore "mintgate/internal/registry/store"
	splitstore "mintgate/internal/settlement/store"
	"mintgate/pkg/domain"
	"mintgate/pkg/requestcontext"
)

type AdminHandlerSuite struct {
	suite.Suite
	dispatcher *dispatcher.Dispatcher
	router     chi.Router
	token      string
	now        time.Time
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.dispatcher = dispatcher.New(
		registrystore.NewMemory(),
		bindingstore.NewMemory(),
		purchasestore.NewMemory(),
		quotastore.NewMemory(),
		auctionstore.NewMemory(),
		splitstore.NewMemory(),
	)

	auth := adminauth.New("test-signing-key")
	token, err := auth.IssueToken("ops", time.Hour)
	s.Require().NoError(err)
	s.token = token

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), s.now)))
		})
	})
	New(s.dispatcher, auth, logger).Register(s.router)
}

func (s *AdminHandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AdminHandlerSuite) createProject() *registrymodels.Project {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	project, err := s.dispatcher.CreateProject(ctx, "test", "artist", domain.CurrencyNative, 10, 0)
	s.Require().NoError(err)
	return project
}

func (s *AdminHandlerSuite) TestAdminRoutesRequireToken() {
	body := map[string]any{"name": "p", "artist_address": "artist", "max_invocations": 10}

	s.Run("missing token is 401", func() {
		rec := s.do(http.MethodPost, "/admin/projects", "", body)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("garbage token is 401", func() {
		rec := s.do(http.MethodPost, "/admin/projects", "garbage", body)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("valid token passes", func() {
		rec := s.do(http.MethodPost, "/admin/projects", s.token, body)
		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func (s *AdminHandlerSuite) TestCreateProject() {
	rec := s.do(http.MethodPost, "/admin/projects", s.token, map[string]any{
		"name":              "my drop",
		"artist_address":    "artist",
		"max_invocations":   100,
		"starting_token_id": 5000,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var project registrymodels.Project
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &project))
	s.False(project.ID.IsNil())
	s.Equal(uint64(100), project.MaxInvocations)
	s.Equal(domain.TokenID(5000), project.StartingTokenID)

	s.Run("invalid project is 400", func() {
		rec := s.do(http.MethodPost, "/admin/projects", s.token, map[string]any{"name": ""})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *AdminHandlerSuite) TestPolicyEndpoints() {
	project := s.createProject()
	policyPath := fmt.Sprintf("/admin/projects/%s/policy", project.ID)
	fixed := map[string]any{"kind": "fixed_price", "fixed": map[string]any{"price": 100}}

	s.Run("bind", func() {
		rec := s.do(http.MethodPost, policyPath, s.token, fixed)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("invalid config is 400", func() {
		rec := s.do(http.MethodPost, policyPath, s.token, map[string]any{"kind": "fixed_price"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("pricing update", func() {
		rec := s.do(http.MethodPut, fmt.Sprintf("/admin/projects/%s/pricing", project.ID), s.token,
			map[string]any{"kind": "fixed_price", "fixed": map[string]any{"price": 200}})
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("kind change via pricing update is 409", func() {
		rec := s.do(http.MethodPut, fmt.Sprintf("/admin/projects/%s/pricing", project.ID), s.token,
			map[string]any{"kind": "exp_decay", "exp_decay": map[string]any{
				"start_time": s.now, "half_life": int64(time.Minute), "start_price": 1000, "base_price": 100,
			}})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("remove", func() {
		rec := s.do(http.MethodDelete, policyPath, s.token, nil)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(http.MethodDelete, policyPath, s.token, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *AdminHandlerSuite) TestSplitsAndPause() {
	project := s.createProject()

	s.Run("valid splits accepted", func() {
		rec := s.do(http.MethodPut, fmt.Sprintf("/admin/projects/%s/splits", project.ID), s.token,
			map[string]any{
				"entries":           []map[string]any{{"recipient": "platform", "share_bps": 2500}},
				"default_recipient": "artist",
			})
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("overallocated splits are 400", func() {
		rec := s.do(http.MethodPut, fmt.Sprintf("/admin/projects/%s/splits", project.ID), s.token,
			map[string]any{
				"entries": []map[string]any{
					{"recipient": "a", "share_bps": 6000},
					{"recipient": "b", "share_bps": 6000},
				},
				"default_recipient": "artist",
			})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("pause flips the flag", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/admin/projects/%s/pause", project.ID), s.token,
			map[string]any{"paused": true})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		ctx := requestcontext.WithTime(context.Background(), s.now)
		updated, err := s.dispatcher.GetProject(ctx, project.ID)
		s.Require().NoError(err)
		s.True(updated.Paused)
	})
}
