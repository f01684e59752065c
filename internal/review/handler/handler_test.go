package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"casework/internal/review/models"
	"casework/internal/review/service"
	clientstore "casework/internal/review/store/client"
	reviewstore "casework/internal/review/store/review"
	id "casework/pkg/domain"
	"casework/pkg/requestcontext"
)

var (
	maker   = id.Actor{ID: 10, Role: id.RoleMaker}
	checker = id.Actor{ID: 20, Role: id.RoleChecker}
)

type HandlerSuite struct {
	suite.Suite
	clients *clientstore.InMemory
	router  http.Handler
	actor   id.Actor
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.clients = clientstore.NewInMemory()
	svc := service.New(reviewstore.NewInMemory(), s.clients, service.WithLogger(logger))

	s.actor = maker
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if !s.actor.IsZero() {
				ctx = requestcontext.WithActor(ctx, s.actor)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	New(svc, logger).Register(r)
	s.router = r

	c, err := models.NewClient("CL-1", "Client One", models.RiskLow, models.RiskLow, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.clients.Save(context.Background(), c))
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	s.decode(rec, &body)
	return body["error"]
}

func (s *HandlerSuite) createReview() models.Review {
	rec := s.do(http.MethodPost, "/reviews", map[string]string{
		"client_ref":  "CL-1",
		"review_type": "manual",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var review models.Review
	s.decode(rec, &review)
	return review
}

func (s *HandlerSuite) TestCreateReview() {
	s.Run("creates a draft", func() {
		review := s.createReview()
		s.Equal(models.ReviewStatusDraft, review.Status)
		s.Equal(id.ClientRef("CL-1"), review.ClientRef)
		s.Equal(maker.ID, review.CreatedBy)
	})

	s.Run("unknown fields are rejected", func() {
		rec := s.do(http.MethodPost, "/reviews", map[string]string{
			"client_ref":  "CL-1",
			"review_type": "manual",
			"extra":       "x",
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing fields are a validation error", func() {
		rec := s.do(http.MethodPost, "/reviews", map[string]string{"review_type": "manual"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", s.errorCode(rec))
	})

	s.Run("unknown client is not found", func() {
		rec := s.do(http.MethodPost, "/reviews", map[string]string{
			"client_ref":  "CL-404",
			"review_type": "manual",
		})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("checker may not create", func() {
		s.actor = checker
		defer func() { s.actor = maker }()
		rec := s.do(http.MethodPost, "/reviews", map[string]string{
			"client_ref":  "CL-1",
			"review_type": "manual",
		})
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("anonymous callers are unauthorized", func() {
		s.actor = id.Actor{}
		defer func() { s.actor = maker }()
		rec := s.do(http.MethodPost, "/reviews", map[string]string{
			"client_ref":  "CL-1",
			"review_type": "manual",
		})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestWorkflowOverHTTP() {
	review := s.createReview()
	base := "/reviews/" + review.ID.String()

	rec := s.do(http.MethodPost, base+"/submit", nil)
	s.Equal(http.StatusUnprocessableEntity, rec.Code, "identity document is still missing")
	s.Equal("not_eligible", s.errorCode(rec))

	rec = s.do(http.MethodGet, base+"/readiness", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var report service.ReadinessReport
	s.decode(rec, &report)
	s.False(report.Ready)
	s.Equal([]models.DocumentType{models.DocumentIdentity}, report.Documents.MissingRequired)

	rec = s.do(http.MethodPost, base+"/documents", map[string]string{
		"document_type": "identity",
		"file_name":     "passport.pdf",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, base+"/submit", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.actor = checker
	rec = s.do(http.MethodPost, base+"/start-review", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, base+"/reject", map[string]string{})
	s.Equal(http.StatusBadRequest, rec.Code, "reason is required")

	rec = s.do(http.MethodPost, base+"/approve", map[string]string{"comments": "looks fine"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var approved models.Review
	s.decode(rec, &approved)
	s.Equal(models.ReviewStatusApproved, approved.Status)

	rec = s.do(http.MethodPost, base+"/reset", nil)
	s.Equal(http.StatusForbidden, rec.Code)

	s.actor = maker
	rec = s.do(http.MethodPost, base+"/reset", nil)
	s.Equal(http.StatusConflict, rec.Code, "approved is terminal")
}

func (s *HandlerSuite) TestExceptionsOverHTTP() {
	review := s.createReview()

	rec := s.do(http.MethodPost, "/reviews/"+review.ID.String()+"/exceptions", map[string]string{
		"exception_type": "documentation",
		"title":          "Passport expired",
		"priority":       "high",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var ex models.Exception
	s.decode(rec, &ex)
	base := "/exceptions/" + ex.ID.String()

	rec = s.do(http.MethodPost, base+"/close", nil)
	s.Equal(http.StatusConflict, rec.Code, "only resolved exceptions close")

	s.Equal(http.StatusOK, s.do(http.MethodPost, base+"/start", nil).Code)

	rec = s.do(http.MethodPost, base+"/assign", map[string]int64{"assignee_id": 0})
	s.Equal(http.StatusBadRequest, rec.Code)

	s.Equal(http.StatusOK, s.do(http.MethodPost, base+"/assign", map[string]int64{"assignee_id": 42}).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, base+"/resolve", map[string]string{"notes": "new passport on file"}).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, base+"/close", nil).Code)

	rec = s.do(http.MethodGet, "/reviews/"+review.ID.String()+"/exceptions?status=closed", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list struct {
		Items []models.Exception `json:"items"`
		Count int                `json:"count"`
	}
	s.decode(rec, &list)
	s.Equal(1, list.Count)

	rec = s.do(http.MethodGet, "/reviews/"+review.ID.String()+"/exceptions?priority=urgent-ish", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestPathAndQueryValidation() {
	s.Run("malformed review id", func() {
		rec := s.do(http.MethodGet, "/reviews/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown review", func() {
		rec := s.do(http.MethodGet, "/reviews/7f1b6c1e-3a4d-4a57-9a53-5a0b9f0e2d11", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("list filters", func() {
		s.createReview()
		rec := s.do(http.MethodGet, "/reviews?status=draft&client_ref=CL-1&limit=10", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var list struct {
			Count int `json:"count"`
		}
		s.decode(rec, &list)
		s.GreaterOrEqual(list.Count, 1)

		for _, q := range []string{"status=bogus", "limit=-1", "auto_created=maybe", "created_from=yesterday"} {
			rec := s.do(http.MethodGet, "/reviews?"+q, nil)
			s.Equal(http.StatusBadRequest, rec.Code, q)
		}
	})
}

func (s *HandlerSuite) TestQuestionnaireOverHTTP() {
	review := s.createReview()
	base := "/reviews/" + review.ID.String() + "/questionnaire"

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, base, nil).Code)

	rec := s.do(http.MethodPatch, base, map[string]string{"kyc_documents_complete": "maybe"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, base, map[string]string{"purpose_of_account": "salary"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, base+"/source-of-funds", map[string]string{"doc_id": "DOC-9"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var q models.KYCQuestionnaire
	s.decode(rec, &q)
	s.Contains(q.SourceOfFundsDocs, "DOC-9")

	rec = s.do(http.MethodDelete, base+"/source-of-funds/DOC-9", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	q = models.KYCQuestionnaire{}
	s.decode(rec, &q)
	s.NotContains(q.SourceOfFundsDocs, "DOC-9")
}
