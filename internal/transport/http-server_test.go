package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/models"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/service"
)

func newTestServer(t *testing.T) (*HTTPServer, *echo.Echo, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))

	logger := zap.NewNop().Sugar()
	s := &HTTPServer{
		db:     g,
		jobs:   service.NewJobs(g, logger),
		logger: logger,
	}

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	return s, e, g
}

func TestCustomValidator_FieldErrorMap(t *testing.T) {
	cv := &CustomValidator{validator: validator.New()}

	err := cv.Validate(&models.JobManageReq{
		Title:           "Go Dev",
		ApplicationLink: "not a url",
	})
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	fields, ok := httpErr.Message.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "company")
	assert.Contains(t, fields, "application_link")
	assert.Contains(t, fields, "job_type")
	assert.NotContains(t, fields, "title")
}

func TestAuthMiddleware(t *testing.T) {
	s, e, g := newTestServer(t)

	user := db.User{Email: "u@x.com", Password: "x", Token: "valid-token"}
	require.NoError(t, g.Create(&user).Error)

	next := func(c echo.Context) error {
		got, err := GetUserFromContext(c)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		return c.NoContent(http.StatusOK)
	}

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/jobs")

		require.NoError(t, s.AuthMiddleware(next)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set("X-Token", "bogus")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/jobs")

		require.NoError(t, s.AuthMiddleware(next)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set("X-Token", "valid-token")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/jobs")

		require.NoError(t, s.AuthMiddleware(next)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("public path skips auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/ping")

		called := false
		require.NoError(t, s.AuthMiddleware(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c))
		assert.True(t, called)
	})
}

func TestJobAction_InvalidActivity(t *testing.T) {
	s, e, g := newTestServer(t)

	staff := db.User{Email: "s@x.com", Password: "x", Token: "t1", IsStaff: true}
	require.NoError(t, g.Create(&staff).Error)
	job := db.Job{PostedByID: staff.ID, Title: "Go Dev", Company: "Acme", JobType: db.JobTypeFullTime, ApplicationLink: "https://a", IsActive: true}
	require.NoError(t, g.Create(&job).Error)

	body := `{"action":"activity","activity":"Starred"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/jobs/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(job.ID))
	c.Set("user", &staff)

	require.NoError(t, s.JobAction(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid activity.")
}

func TestJobManageMutate_DeleteAction(t *testing.T) {
	s, e, g := newTestServer(t)

	staffA := db.User{Email: "a@x.com", Password: "x", Token: "ta", IsStaff: true}
	staffB := db.User{Email: "b@x.com", Password: "x", Token: "tb", IsStaff: true}
	require.NoError(t, g.Create(&staffA).Error)
	require.NoError(t, g.Create(&staffB).Error)
	job := db.Job{PostedByID: staffA.ID, Title: "A", Company: "Acme", JobType: db.JobTypeFullTime, ApplicationLink: "https://a", IsActive: true}
	require.NoError(t, g.Create(&job).Error)

	do := func(actor *db.User) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/jobs/manage/1", strings.NewReader(`{"action":"delete"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/jobs/manage/:id")
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(job.ID))
		c.Set("user", actor)
		return rec, s.JobManageMutate(c)
	}

	_, err := do(&staffB)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	rec, err := do(&staffA)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = do(&staffA)
	httpErr, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in    string
		first string
		last  string
	}{
		{"", "", ""},
		{"Ada", "Ada", ""},
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"  Ada   Byron Lovelace ", "Ada", "  Byron Lovelace"},
	}
	for _, c := range cases {
		first, last := splitName(c.in)
		assert.Equal(t, c.first, first, "input %q", c.in)
		assert.Equal(t, c.last, last, "input %q", c.in)
	}
}
