package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

type recordingObserver struct {
	paths []string
}

func (r *recordingObserver) ObserveHTTPRequest(_, path string, _ int, _ time.Duration) {
	r.paths = append(r.paths, path)
}

func newRouter(role models.OperatorRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := JWT(stubValidator{claims: &models.JWTClaims{OperatorID: "op-1", Role: role}})
	r.GET("/students", auth, RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleViewer), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.OperatorKey))
	})
	r.POST("/enrollments", auth, RequireRoles(models.RoleAdmin, models.RoleRegistrar), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := newRouter(models.RoleViewer)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/students", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/students", "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/students", "Bearer bad").Code)

	rec := serve(r, http.MethodGet, "/students", "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-1", rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	viewer := newRouter(models.RoleViewer)
	assert.Equal(t, http.StatusForbidden, serve(viewer, http.MethodPost, "/enrollments", "Bearer good").Code)

	registrar := newRouter(models.RoleRegistrar)
	assert.Equal(t, http.StatusCreated, serve(registrar, http.MethodPost, "/enrollments", "Bearer good").Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "").Code)
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextOperatorKey, &models.JWTClaims{OperatorID: "op-9"})
		c.Next()
	})
	r.DELETE("/students/:email", Audit(audit, models.AuditActionStudentDelete, "student", "email"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.DELETE("/courses/:code", Audit(audit, models.AuditActionCourseDelete, "course", "code"), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	serve(r, http.MethodDelete, "/students/ana@school.edu", "")
	serve(r, http.MethodDelete, "/courses/CS157A", "")

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, models.AuditActionStudentDelete, log.Action)
	require.NotNil(t, log.OperatorID)
	assert.Equal(t, "op-9", *log.OperatorID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "ana@school.edu", *log.ResourceID)
}

func TestMetricsLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/courses/:code", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/courses/CS157A", "")
	serve(r, http.MethodGet, "/nope", "")

	assert.Equal(t, []string{"/courses/:code", "unmatched"}, observer.paths)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		meta = ExtractMeta(c)
	})
	r.Use(WithResponseMeta())
	r.GET("/roster", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/roster", "")

	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
