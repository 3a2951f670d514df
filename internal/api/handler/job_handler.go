package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/api/metrics"
	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
)

// JobHandler handles HTTP requests for jobs, categories and job reports.
type JobHandler struct {
	service    ports.JobService
	moderation ports.ModerationService
	tr         *i18n.Translator
}

func NewJobHandler(service ports.JobService, moderation ports.ModerationService, tr *i18n.Translator) *JobHandler {
	return &JobHandler{service: service, moderation: moderation, tr: tr}
}

// List handles GET /v1/jobs.
//
// @Summary      List jobs
// @Description  Newest first. Every non-empty filter must match; search is a case-insensitive substring of title or description.
// @Tags         jobs
// @Produce      json
// @Param        category         query     string  false  "Category"
// @Param        urgency          query     string  false  "low, medium or high"
// @Param        min_price        query     number  false  "Inclusive lower price bound"
// @Param        max_price        query     number  false  "Inclusive upper price bound"
// @Param        location         query     string  false  "Location"
// @Param        search           query     string  false  "Text search"
// @Param        include_blocked  query     bool    false  "Admins only"
// @Success      200              {object}  jobListResponse
// @Failure      400              {object}  map[string]string
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	q, err := bindJobQuery(c)
	if err != nil {
		return err
	}
	if err := c.Validate(q); err != nil {
		return err
	}

	viewer, _ := optionalActor(c)
	jobs, err := h.service.ListJobs(c.Request().Context(), toJobFilter(q), viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).jobs(jobs))
}

func bindJobQuery(c echo.Context) (jobListQuery, error) {
	var (
		q                  jobListQuery
		minPrice, maxPrice float64
	)
	err := echo.QueryParamsBinder(c).
		String("category", &q.Category).
		String("urgency", &q.Urgency).
		Float64("min_price", &minPrice).
		Float64("max_price", &maxPrice).
		String("location", &q.Location).
		String("search", &q.Search).
		Bool("include_blocked", &q.IncludeBlocked).
		BindError()
	if err != nil {
		return q, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if c.QueryParam("min_price") != "" {
		q.MinPrice = &minPrice
	}
	if c.QueryParam("max_price") != "" {
		q.MaxPrice = &maxPrice
	}
	return q, nil
}

// Get handles GET /v1/jobs/:id.
//
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	viewer, _ := optionalActor(c)
	job, err := h.service.GetJob(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).job(job))
}

// Similar handles GET /v1/jobs/:id/similar.
//
// @Summary      Open jobs in the same category or location
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobListResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id}/similar [get]
func (h *JobHandler) Similar(c echo.Context) error {
	viewer, _ := optionalActor(c)
	jobs, err := h.service.SimilarJobs(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).jobs(jobs))
}

// Create handles POST /v1/jobs.
//
// @Summary      Post a new job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createJobRequest  true   "Job details"
// @Success      201              {object}  jobResponse
// @Success      200              {object}  jobResponse  "Replay of an earlier request with the same key"
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Router       /v1/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	result, err := h.service.CreateJob(c.Request().Context(), toCreateJobInput(req, actor, idempotencyKey))
	if err != nil {
		return err
	}

	resp := newPresenter(h.tr, c).job(result.Job)
	if result.AlreadyExisted {
		metrics.IdempotentReplaysTotal.Inc()
		return c.JSON(http.StatusOK, resp)
	}
	metrics.JobsCreatedTotal.WithLabelValues(result.Job.Category).Inc()
	c.Response().Header().Set(echo.HeaderLocation, resp.Links.Self)
	return c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /v1/jobs/:id.
//
// @Summary      Edit a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Job id"
// @Param        body  body      updateJobRequest  true  "Fields to change"
// @Success      200   {object}  jobResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	job, err := h.service.UpdateJob(c.Request().Context(), toUpdateJobInput(req, c.Param("id"), actor))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).job(job))
}

// Delete handles DELETE /v1/jobs/:id.
//
// @Summary      Delete a job
// @Tags         jobs
// @Security     BearerAuth
// @Param        id   path  string  true  "Job id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteJob(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Accept handles POST /v1/jobs/:id/accept.
//
// @Summary      Accept an open job (executors)
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/jobs/{id}/accept [post]
func (h *JobHandler) Accept(c echo.Context) error {
	return h.transition(c, h.service.Accept)
}

// Complete handles POST /v1/jobs/:id/complete.
//
// @Summary      Mark an in-progress job as completed
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/jobs/{id}/complete [post]
func (h *JobHandler) Complete(c echo.Context) error {
	return h.transition(c, h.service.Complete)
}

// Cancel handles POST /v1/jobs/:id/cancel.
//
// @Summary      Cancel an open or in-progress job
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/jobs/{id}/cancel [post]
func (h *JobHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.service.Cancel)
}

type transitionFunc func(ctx context.Context, jobID string, actor ports.Actor) (*domain.Job, error)

func (h *JobHandler) transition(c echo.Context, apply transitionFunc) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	job, err := apply(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	metrics.JobTransitionsTotal.WithLabelValues(string(job.Status)).Inc()
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).job(job))
}

// Mine handles GET /v1/me/jobs.
//
// @Summary      Jobs posted by the caller
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  jobListResponse
// @Router       /v1/me/jobs [get]
func (h *JobHandler) Mine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.ListUserJobs(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).jobs(jobs))
}

// Earnings handles GET /v1/me/earnings.
//
// @Summary      Totals over the caller's completed jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  earningsResponse
// @Router       /v1/me/earnings [get]
func (h *JobHandler) Earnings(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Earnings(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).earnings(summary))
}

// Categories handles GET /v1/categories.
//
// @Summary      Job categories in display order
// @Tags         jobs
// @Produce      json
// @Success      200  {array}  categoryResponse
// @Router       /v1/categories [get]
func (h *JobHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).categories())
}

// Report handles POST /v1/jobs/:id/reports.
//
// @Summary      Report a job to moderators
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Job id"
// @Param        body  body      fileReportRequest  true  "Complaint"
// @Success      201   {object}  reportResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/jobs/{id}/reports [post]
func (h *JobHandler) Report(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req fileReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	report, err := h.moderation.FileReport(c.Request().Context(), ports.FileReportInput{
		JobID:       c.Param("id"),
		Reporter:    actor,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newPresenter(h.tr, c).report(report))
}
