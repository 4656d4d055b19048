package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"profiled/internal/profile"
	"profiled/internal/profile/handler/mocks"
)

type ProfileHandlerSuite struct {
	suite.Suite
	ctx         context.Context
	ctrl        *gomock.Controller
	mockService *mocks.MockProfileService
	router      chi.Router
}

func TestProfileHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProfileHandlerSuite))
}

func (s *ProfileHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *ProfileHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockProfileService(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.mockService, logger, 5*time.Second)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *ProfileHandlerSuite) serve(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ProfileHandlerSuite) TestHandler_Get() {
	s.Run("resolved profile - 200", func() {
		resolved := profile.ResolvedProfile{
			UserID:      "u-1",
			Name:        "Alex",
			DisplayName: "Alex",
			Email:       profile.Unknown,
		}
		s.mockService.EXPECT().Get(gomock.Any(), "u-1").Return(resolved)

		w := s.serve(http.MethodGet, "/profiles/u-1", nil)
		s.Require().Equal(http.StatusOK, w.Code)

		var body profile.ResolvedProfile
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
		s.Equal(resolved, body)
	})

	s.Run("fallback profile still 200", func() {
		s.mockService.EXPECT().Get(gomock.Any(), "u-ghost").Return(profile.Fallback("u-ghost"))

		w := s.serve(http.MethodGet, "/profiles/u-ghost", nil)
		s.Require().Equal(http.StatusOK, w.Code)

		var body profile.ResolvedProfile
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
		s.Equal("User u-ghost", body.DisplayName)
		s.False(body.HasAvatar)
	})
}

func (s *ProfileHandlerSuite) TestHandler_Preload() {
	s.Run("preload succeeds - 204", func() {
		s.mockService.EXPECT().Preload(gomock.Any(), []string{"u-1", "u-2"}).Return(nil)

		w := s.serve(http.MethodPost, "/profiles/preload", []byte(`{"ids":["u-1","u-2"]}`))
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("ids are deduped and trimmed before the service sees them", func() {
		s.mockService.EXPECT().Preload(gomock.Any(), []string{"u-1", "u-2"}).Return(nil)

		w := s.serve(http.MethodPost, "/profiles/preload", []byte(`{"ids":[" u-1","u-2","u-1",""]}`))
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("source failure - 502 with typed body", func() {
		s.mockService.EXPECT().Preload(gomock.Any(), gomock.Any()).Return(errors.New("source down"))

		w := s.serve(http.MethodPost, "/profiles/preload", []byte(`{"ids":["u-1"]}`))
		s.Require().Equal(http.StatusBadGateway, w.Code)

		var body map[string]string
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
		s.Equal("upstream_unavailable", body["error"])
	})

	s.Run("invalid body - 400", func() {
		s.mockService.EXPECT().Preload(gomock.Any(), gomock.Any()).Times(0)

		w := s.serve(http.MethodPost, "/profiles/preload", []byte(`{"ids":`))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("empty id list - 400", func() {
		s.mockService.EXPECT().Preload(gomock.Any(), gomock.Any()).Times(0)

		w := s.serve(http.MethodPost, "/profiles/preload", []byte(`{"ids":["  ",""]}`))
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ProfileHandlerSuite) TestHandler_Ingest() {
	s.Run("ingest succeeds - 204", func() {
		raw := map[string]profile.RawProfile{"u-1": {Name: "Alex"}}
		s.mockService.EXPECT().Ingest(raw, []string{"u-2"})

		w := s.serve(http.MethodPost, "/profiles/ingest",
			[]byte(`{"profiles":{"u-1":{"name":"Alex"}},"known_ids":["u-2"]}`))
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("empty payload - 400", func() {
		s.mockService.EXPECT().Ingest(gomock.Any(), gomock.Any()).Times(0)

		w := s.serve(http.MethodPost, "/profiles/ingest", []byte(`{}`))
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ProfileHandlerSuite) TestHandler_Invalidate() {
	s.Run("explicit ids are evicted", func() {
		s.mockService.EXPECT().Invalidate("u-1", "u-2")

		w := s.serve(http.MethodPost, "/profiles/invalidate", []byte(`{"ids":["u-1","u-2"]}`))
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("empty id list resets the cache", func() {
		s.mockService.EXPECT().Reset()

		w := s.serve(http.MethodPost, "/profiles/invalidate", []byte(`{}`))
		s.Equal(http.StatusNoContent, w.Code)
	})
}

func (s *ProfileHandlerSuite) TestHandler_Stats() {
	s.mockService.EXPECT().Len().Return(42)

	w := s.serve(http.MethodGet, "/profiles/stats", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var body map[string]int
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal(42, body["resolved"])
}
