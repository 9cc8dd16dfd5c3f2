package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/config"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/models"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/service"
)

type (
	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		db     *gorm.DB
		auth   *service.Auth
		jobs   *service.Jobs
		logger *zap.SugaredLogger
	}
)

var publicPaths = map[string]struct{}{
	"/auth/signup":                 {},
	"/auth/login":                  {},
	"/auth/password-reset":         {},
	"/auth/password-reset/confirm": {},
	"/ping":                        {},
}

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, g *gorm.DB, auth *service.Auth, jobs *service.Jobs, logger *zap.SugaredLogger) *HTTPServer {
	e := echo.New()

	instance := HTTPServer{
		db:     g,
		auth:   auth,
		jobs:   jobs,
		logger: logger,
	}

	authG := e.Group("/auth")
	authG.POST("/signup", instance.Signup)
	authG.POST("/login", instance.Login)
	authG.GET("/logout", instance.Logout)
	authG.POST("/password-reset", instance.PasswordReset)
	authG.POST("/password-reset/confirm", instance.PasswordResetConfirm)

	jobG := e.Group("/jobs")
	jobG.GET("", instance.JobList)
	jobG.POST("/filter", instance.JobFilter)
	jobG.GET("/manage", instance.JobManageList)
	jobG.POST("/manage", instance.JobManageCreate)
	jobG.GET("/manage/:id", instance.JobManageGet)
	jobG.POST("/manage/:id", instance.JobManageMutate)
	jobG.GET("/:id", instance.JobDetail)
	jobG.POST("/:id", instance.JobAction)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(instance.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

func (s *HTTPServer) Signup(c echo.Context) error {
	req := models.SignupReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	firstName, lastName := splitName(req.Name)
	user, err := s.auth.Register(req.Email, req.Password, firstName, lastName)
	if err != nil {
		if errors.Cause(err) == service.ErrEmailTaken {
			return c.JSON(http.StatusBadRequest, models.DetailResp{
				Detail: "Email is already registered. Please login instead.",
			})
		}
		return err
	}

	return c.JSON(http.StatusCreated, models.AuthResp{
		Message: "Signup successful",
		Token:   user.Token,
		UserID:  user.ID,
		Email:   user.Email,
	})
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := models.LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		cause := errors.Cause(err)
		if cause == service.ErrLoginUserNotFound || cause == service.ErrLoginPasswordDoesNotMatch {
			return c.JSON(http.StatusBadRequest, models.DetailResp{
				Detail: "Unable to log in with provided credentials.",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, models.AuthResp{
		Message: "Login successful",
		Token:   user.Token,
		UserID:  user.ID,
		Email:   user.Email,
	})
}

func (s *HTTPServer) Logout(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.auth.Logout(user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"email":   user.Email,
		"message": "Logged out successfully",
	})
}

func (s *HTTPServer) PasswordReset(c echo.Context) error {
	req := models.PasswordResetReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := s.auth.RequestPasswordReset(req.Email); err != nil {
		return err
	}
	// Same response whether or not the account exists.
	return c.JSON(http.StatusOK, models.DetailResp{
		Detail: "If the email is registered, a reset link has been sent.",
	})
}

func (s *HTTPServer) PasswordResetConfirm(c echo.Context) error {
	req := models.PasswordResetConfirmReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := s.auth.ConfirmPasswordReset(req.Token, req.Password); err != nil {
		if errors.Cause(err) == service.ErrResetTokenInvalid {
			return c.JSON(http.StatusBadRequest, models.DetailResp{
				Detail: "Reset token is invalid or expired.",
			})
		}
		return err
	}
	return c.JSON(http.StatusOK, models.DetailResp{Detail: "Password has been reset."})
}

func (s *HTTPServer) JobList(c echo.Context) error {
	return s.respondJobList(c, service.Filter{})
}

func (s *HTTPServer) JobFilter(c echo.Context) error {
	req := models.FilterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	return s.respondJobList(c, service.Filter{
		Tags:      req.Tags,
		Titles:    req.Title,
		Companies: req.Company,
		Locations: req.Location,
		JobTypes:  req.JobType,
		Time:      req.Time,
	})
}

func (s *HTTPServer) respondJobList(c echo.Context, f service.Filter) error {
	jobs, err := s.jobs.FilterJobs(f)
	if err != nil {
		return err
	}
	facets, err := s.jobs.FacetUniverse()
	if err != nil {
		return err
	}

	items := make([]models.JobListItem, len(jobs))
	for i := range jobs {
		items[i] = toListItem(&jobs[i])
	}
	return c.JSON(http.StatusOK, models.JobListResp{
		Filters: models.FacetResp{
			Tags:     facets.Tags,
			Title:    facets.Titles,
			Company:  facets.Companies,
			Location: facets.Locations,
			JobType:  facets.JobTypes,
			Time:     facets.Times,
		},
		Jobs: items,
	})
}

func (s *HTTPServer) JobDetail(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	job, err := s.jobs.ActiveJob(id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, toDetailResp(job))
}

func (s *HTTPServer) JobAction(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.ActivityReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Action != "activity" {
		return c.JSON(http.StatusBadRequest, models.DetailResp{Detail: "Unknown action."})
	}

	if err := s.jobs.RecordActivity(user, id, req.Activity); err != nil {
		if errors.Cause(err) == service.ErrInvalidActivity {
			return c.JSON(http.StatusBadRequest, models.DetailResp{Detail: "Invalid activity."})
		}
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, models.DetailResp{
		Detail: fmt.Sprintf("Job %s successfully.", req.Activity),
	})
}

func (s *HTTPServer) JobManageList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	jobs, err := s.jobs.ManagedJobs(user)
	if err != nil {
		return mapServiceError(err)
	}

	resp := make([]models.JobManageResp, len(jobs))
	for i := range jobs {
		resp[i] = toManageResp(&jobs[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) JobManageCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.JobManageReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	job, err := s.jobs.CreateJob(user, toJobInput(&req))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, toManageResp(job))
}

func (s *HTTPServer) JobManageGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	job, err := s.jobs.ManagedJob(user, id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, toManageResp(job))
}

// JobManageMutate handles both the update payload and the {"action":"delete"}
// form on the same route, so the body is read once and decoded twice.
func (s *HTTPServer) JobManageMutate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	probe := struct {
		Action string `json:"action"`
	}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &probe); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	if probe.Action == "delete" {
		if err := s.jobs.DeleteJob(user, id); err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, models.DetailResp{Detail: "Job deleted successfully."})
	}

	req := models.JobManageReq{}
	if err := json.Unmarshal(body, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := s.jobs.UpdateJob(user, id, toJobInput(&req))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, toManageResp(job))
}

func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := publicPaths[c.Path()]; ok {
			return next(c)
		}
		token := ""
		for key, values := range c.Request().Header {
			if strings.ToLower(key) == "x-token" {
				token = values[0]
				break
			}
		}
		if token == "" {
			return c.NoContent(http.StatusUnauthorized)
		}
		user := db.User{}
		res := s.db.Where("token = ?", token).First(&user)
		if res.Error != nil {
			s.logger.Error(errors.Wrap(res.Error, "find user in db"))
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user", &user)
		return next(c)
	}
}

////////

func mapServiceError(err error) error {
	switch errors.Cause(err) {
	case service.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "Not found.")
	case service.ErrPermissionDenied:
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
	case service.ErrInvalidActivity:
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"activity": "Invalid activity."})
	case service.ErrInvalidJobType:
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"job_type": "Invalid job type."})
	}
	return err
}

func toJobInput(req *models.JobManageReq) service.JobInput {
	return service.JobInput{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Description:     req.Description,
		ApplicationLink: req.ApplicationLink,
		JobType:         req.JobType,
		Tags:            req.Tags,
		IsActive:        req.IsActive,
	}
}

func toTagResps(tags []db.Tag) []models.TagResp {
	resp := make([]models.TagResp, len(tags))
	for i := range tags {
		resp[i] = models.TagResp{
			Name: tags[i].Name,
			Slug: tags[i].Slug,
		}
	}
	return resp
}

func toListItem(job *db.Job) models.JobListItem {
	return models.JobListItem{
		ID:       job.ID,
		Title:    job.Title,
		Company:  job.Company,
		Location: job.Location,
		JobType:  job.JobType,
		PostedBy: models.UserResp{
			FirstName: job.PostedBy.FirstName,
			LastName:  job.PostedBy.LastName,
		},
		Tags:      toTagResps(job.Tags),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func toDetailResp(job *db.Job) models.JobDetailResp {
	return models.JobDetailResp{
		ID:              job.ID,
		Title:           job.Title,
		Company:         job.Company,
		Location:        job.Location,
		Description:     job.Description,
		ApplicationLink: job.ApplicationLink,
		JobType:         job.JobType,
		PostedBy: models.UserResp{
			FirstName: job.PostedBy.FirstName,
			LastName:  job.PostedBy.LastName,
		},
		Tags:      toTagResps(job.Tags),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func toManageResp(job *db.Job) models.JobManageResp {
	return models.JobManageResp{
		ID:              job.ID,
		Title:           job.Title,
		Company:         job.Company,
		Location:        job.Location,
		Description:     job.Description,
		ApplicationLink: job.ApplicationLink,
		JobType:         job.JobType,
		IsActive:        job.IsActive,
		PostedBy: models.UserResp{
			FirstName: job.PostedBy.FirstName,
			LastName:  job.PostedBy.LastName,
		},
		Tags:      toTagResps(job.Tags),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := map[string]string{}
			for _, fe := range verrs {
				fields[fieldKey(fe.Field())] = fmt.Sprintf("failed '%s' validation", fe.Tag())
			}
			return echo.NewHTTPError(http.StatusBadRequest, fields)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// fieldKey converts a struct field name to its snake_case JSON key.
func fieldKey(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return err
	}
	return nil
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, _ := c.Get("user").(*db.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param 'id'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found.")
	}
	return vv, nil
}
