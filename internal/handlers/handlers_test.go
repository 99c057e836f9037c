package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
	"github.com/seusdados/crm-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServiceManager struct {
	questionnaires services.QuestionnaireService
	responses      services.ResponseService
	documents      services.DocumentService
	importExport   services.ImportExportService
	pingErr        error
}

func (m *fakeServiceManager) Questionnaire() services.QuestionnaireService { return m.questionnaires }
func (m *fakeServiceManager) Response() services.ResponseService           { return m.responses }
func (m *fakeServiceManager) Document() services.DocumentService           { return m.documents }
func (m *fakeServiceManager) ImportExport() services.ImportExportService   { return m.importExport }
func (m *fakeServiceManager) Ping(ctx context.Context) error                { return m.pingErr }

// stubDocuments fails document lookups with a fixed error.
type stubDocuments struct {
	services.DocumentService
	err error
}

func (s *stubDocuments) GetDocument(ctx context.Context, id uuid.UUID) (*models.GeneratedDocument, error) {
	return nil, s.err
}

func (s *stubDocuments) RenderPDF(ctx context.Context, id uuid.UUID) (*services.ExportFile, error) {
	return nil, s.err
}

type fakeVerifier struct {
	userID string
	err    error
}

func (v fakeVerifier) VerifyToken(token string) (string, error) {
	return v.userID, v.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewLogger("test", io.Discard)
}

// statelessManager wires the real scoring and resolving services; neither touches storage.
func statelessManager() *fakeServiceManager {
	v := validator.New()
	serviceLogger := services.NewServiceLogger(nil, services.LogConfig{Service: "crm-service", Component: "test"})
	return &fakeServiceManager{
		responses: services.NewResponseService(nil, nil, events.NewMockEventPublisher(nil), v, serviceLogger),
		documents: services.NewDocumentService(nil, nil, nil, nil, v, serviceLogger),
	}
}

func newTestRouter(manager services.ServiceManager, verifier TokenVerifier) *gin.Engine {
	router := gin.New()
	NewHandlerManager(manager, verifier, testLogger()).SetupRoutes(router)
	return router
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(statelessManager(), fakeVerifier{err: errors.New("never called")})

	w := doRequest(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"crm-service"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
}

func TestReadinessCheck(t *testing.T) {
	w := doRequest(newTestRouter(&fakeServiceManager{}, nil), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(newTestRouter(&fakeServiceManager{pingErr: errors.New("connection refused")}, nil), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unreachable")
}

func TestScoringHandler_CalculateScore(t *testing.T) {
	router := newTestRouter(statelessManager(), nil)

	t.Run("scores posted answers", func(t *testing.T) {
		body := `{
			"questions": [
				{"id": "dpo", "type": "boolean", "score_config": {"true_value": 4, "false_value": 0}},
				{"id": "size", "type": "scale", "score_config": {"ranges": [{"min": 1, "max": 5, "score": 1}, {"min": 6, "max": 10, "score": 3}]}}
			],
			"answers": {"dpo": true, "size": 7}
		}`
		w := doRequest(router, http.MethodPost, "/api/v1/scoring/calculate", body, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result struct {
			TotalScore           float64 `json:"total_score"`
			MaxPossibleScore     float64 `json:"max_possible_score"`
			CompletionPercentage int     `json:"completion_percentage"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 7.0, result.TotalScore)
		assert.Equal(t, 7.0, result.MaxPossibleScore)
		assert.Equal(t, 100, result.CompletionPercentage)
	})

	t.Run("overlapping ranges are rejected", func(t *testing.T) {
		body := `{
			"questions": [
				{"id": "size", "type": "scale", "score_config": {"ranges": [{"min": 0, "max": 5, "score": 1}, {"min": 3, "max": 8, "score": 2}]}}
			],
			"answers": {}
		}`
		w := doRequest(router, http.MethodPost, "/api/v1/scoring/calculate", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_failed", decodeError(t, w).Code)
	})

	t.Run("malformed payload", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/scoring/calculate", `{"questions":`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_payload", decodeError(t, w).Code)
	})
}

func TestTemplateHandler_ResolveTemplate(t *testing.T) {
	router := newTestRouter(statelessManager(), nil)

	body := `{"body": "Contrato com {{contratante_nome}} em {{contratante_cidade}}", "values": {"contratante_nome": "Acme"}}`
	w := doRequest(router, http.MethodPost, "/api/v1/templates/resolve", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		ResolvedBody     string   `json:"resolved_body"`
		UnresolvedFields []string `json:"unresolved_fields"`
		ResolvedCount    int      `json:"resolved_count"`
		TotalCount       int      `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Contrato com Acme em ", result.ResolvedBody)
	assert.Equal(t, []string{"contratante_cidade"}, result.UnresolvedFields)
	assert.Equal(t, 1, result.ResolvedCount)
	assert.Equal(t, 2, result.TotalCount)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
		code   string
	}{
		{"not found", "/api/v1/documents/" + uuid.NewString(), services.ErrDocumentNotFound, http.StatusNotFound, "not_found"},
		{"renderer missing", "/api/v1/documents/" + uuid.NewString() + "/pdf", services.ErrRenderingUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"conflict", "/api/v1/documents/" + uuid.NewString(), services.ErrLeadAlreadyConverted, http.StatusConflict, "conflict"},
		{"unexpected", "/api/v1/documents/" + uuid.NewString(), errors.New("database is on fire"), http.StatusInternalServerError, "internal_error"},
		{"bad id", "/api/v1/documents/not-a-uuid", nil, http.StatusBadRequest, "invalid_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeServiceManager{documents: &stubDocuments{err: tt.err}}, nil)

			w := doRequest(router, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	newRouter := func(verifier TokenVerifier) *gin.Engine {
		router := gin.New()
		router.Use(AuthMiddleware(verifier, testLogger()))
		router.GET("/whoami", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(userIDKey))
		})
		return router
	}

	t.Run("disabled runs as anonymous", func(t *testing.T) {
		w := doRequest(newRouter(nil), http.MethodGet, "/whoami", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, anonymousUser, w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(newRouter(fakeVerifier{userID: "u-1"}), http.MethodGet, "/whoami", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeError(t, w).Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		w := doRequest(newRouter(fakeVerifier{err: errors.New("bad signature")}), http.MethodGet, "/whoami", "", map[string]string{
			"Authorization": "Bearer abc.def.ghi",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", decodeError(t, w).Message)
	})

	t.Run("valid token", func(t *testing.T) {
		w := doRequest(newRouter(fakeVerifier{userID: "seusdados/maria"}), http.MethodGet, "/whoami", "", map[string]string{
			"Authorization": "Bearer abc.def.ghi",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "seusdados/maria", w.Body.String())
	})
}
