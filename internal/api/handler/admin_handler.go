package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
)

// AdminHandler serves the moderation panel. Every route requires the admin role.
type AdminHandler struct {
	service ports.ModerationService
	tr      *i18n.Translator
	now     func() time.Time
}

func NewAdminHandler(service ports.ModerationService, tr *i18n.Translator) *AdminHandler {
	return &AdminHandler{service: service, tr: tr, now: time.Now}
}

// Users handles GET /v1/admin/users.
//
// @Summary      Users with job counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search  query    string  false  "Name or email substring"
// @Param        role    query    string  false  "all, client, executor or admin"
// @Param        status  query    string  false  "all, active or blocked"
// @Success      200     {array}  adminUserResponse
// @Router       /v1/admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context(), ports.UserFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	p := newPresenter(h.tr, c)
	out := make([]adminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, p.adminUser(u))
	}
	return c.JSON(http.StatusOK, out)
}

// BlockUser handles POST /v1/admin/users/:id/block.
//
// @Summary      Block a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/users/{id}/block [post]
func (h *AdminHandler) BlockUser(c echo.Context) error {
	admin, err := ctxActor(c)
	if err != nil {
		return err
	}
	u, err := h.service.BlockUser(c.Request().Context(), c.Param("id"), admin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).user(u))
}

// UnblockUser handles POST /v1/admin/users/:id/unblock.
//
// @Summary      Unblock a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/users/{id}/unblock [post]
func (h *AdminHandler) UnblockUser(c echo.Context) error {
	u, err := h.service.UnblockUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).user(u))
}

// DeleteUser handles DELETE /v1/admin/users/:id.
//
// @Summary      Delete a user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	admin, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id"), admin); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Jobs handles GET /v1/admin/jobs.
//
// @Summary      Every job, blocked ones included, with report counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search    query    string  false  "Title or description substring"
// @Param        category  query    string  false  "Category"
// @Success      200       {array}  adminJobResponse
// @Router       /v1/admin/jobs [get]
func (h *AdminHandler) Jobs(c echo.Context) error {
	jobs, err := h.service.ListJobs(c.Request().Context(), ports.AdminJobFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return err
	}

	p := newPresenter(h.tr, c)
	out := make([]adminJobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, p.adminJob(j))
	}
	return c.JSON(http.StatusOK, out)
}

// BlockJob handles POST /v1/admin/jobs/:id/block.
//
// @Summary      Block a job
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/jobs/{id}/block [post]
func (h *AdminHandler) BlockJob(c echo.Context) error {
	j, err := h.service.BlockJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).job(j))
}

// UnblockJob handles POST /v1/admin/jobs/:id/unblock.
//
// @Summary      Unblock a job
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/jobs/{id}/unblock [post]
func (h *AdminHandler) UnblockJob(c echo.Context) error {
	j, err := h.service.UnblockJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).job(j))
}

// DeleteJob handles DELETE /v1/admin/jobs/:id.
//
// @Summary      Delete a job
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Job id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/jobs/{id} [delete]
func (h *AdminHandler) DeleteJob(c echo.Context) error {
	if err := h.service.DeleteJob(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Reports handles GET /v1/admin/reports.
//
// @Summary      Moderation reports, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query    string  false  "all, pending, reviewed, resolved or dismissed"
// @Success      200     {array}  reportResponse
// @Failure      400     {object}  map[string]string
// @Router       /v1/admin/reports [get]
func (h *AdminHandler) Reports(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "all" {
		status = ""
	}
	reports, err := h.service.ListReports(c.Request().Context(), domain.ReportStatus(status))
	if err != nil {
		return err
	}

	p := newPresenter(h.tr, c)
	out := make([]reportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, p.report(r))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateReport handles PATCH /v1/admin/reports/:id.
//
// @Summary      Change a report's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report id"
// @Param        body  body      updateReportRequest  true  "New status"
// @Success      200   {object}  reportResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/reports/{id} [patch]
func (h *AdminHandler) UpdateReport(c echo.Context) error {
	admin, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	r, err := h.service.UpdateReportStatus(c.Request().Context(), c.Param("id"), domain.ReportStatus(req.Status), admin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).report(r))
}

// Statistics handles GET /v1/admin/statistics.
//
// @Summary      Dashboard counters, computed on every request
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statisticsResponse
// @Router       /v1/admin/statistics [get]
func (h *AdminHandler) Statistics(c echo.Context) error {
	s, err := h.service.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statisticsResponse{
		TotalUsers:    s.TotalUsers,
		ActiveUsers:   s.ActiveUsers,
		BlockedUsers:  s.BlockedUsers,
		TotalJobs:     s.TotalJobs,
		CompletedJobs: s.CompletedJobs,
		BlockedJobs:   s.BlockedJobs,
		TotalReports:  s.TotalReports,
		GeneratedAt:   formatTime(h.now()),
	})
}
