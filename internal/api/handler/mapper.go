package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
)

// presenter renders domain values in the request language.
type presenter struct {
	tr   *i18n.Translator
	lang i18n.Lang
}

func newPresenter(tr *i18n.Translator, c echo.Context) presenter {
	return presenter{tr: tr, lang: ctxLang(c)}
}

// --- Jobs ---

func (p presenter) job(j *domain.Job) jobResponse {
	return jobResponse{
		ID:            j.ID,
		Title:         j.Title,
		Description:   j.Description,
		Category:      j.Category,
		CategoryLabel: p.tr.T(p.lang, "category."+j.Category),
		Price:         j.Price,
		Currency:      i18n.NormalizeCurrency(j.Currency),
		PriceDisplay:  i18n.FormatPrice(j.Price, j.Currency),
		Deadline:      formatTime(j.Deadline),
		Location:      j.Location,
		Urgency:       string(j.Urgency),
		UrgencyLabel:  p.tr.T(p.lang, "urgency."+string(j.Urgency)),
		Status:        string(j.Status),
		StatusLabel:   p.tr.T(p.lang, "status."+string(j.Status)),
		ClientID:      j.ClientID,
		ClientName:    i18n.FormatName(p.lang, j.ClientName),
		IsBlocked:     j.IsBlocked,
		CreatedAt:     formatTime(j.CreatedAt),
		UpdatedAt:     formatTime(j.UpdatedAt),
		Links:         jobLinks{Self: "/api/v1/jobs/" + j.ID},
	}
}

func (p presenter) jobs(list []*domain.Job) jobListResponse {
	items := make([]jobResponse, 0, len(list))
	for _, j := range list {
		items = append(items, p.job(j))
	}
	return jobListResponse{Items: items, Total: len(items)}
}

// earnings renders amounts in the default currency; jobs are summed as posted.
func (p presenter) earnings(s *domain.EarningsSummary) earningsResponse {
	monthly := make([]earningsMonthResponse, 0, len(s.Monthly))
	for _, m := range s.Monthly {
		monthly = append(monthly, earningsMonthResponse{
			Month:        m.Month,
			Total:        m.Total,
			TotalDisplay: i18n.FormatPrice(m.Total, i18n.DefaultCurrency),
		})
	}
	return earningsResponse{
		Completed:      s.Completed,
		Total:          s.Total,
		TotalDisplay:   i18n.FormatPrice(s.Total, i18n.DefaultCurrency),
		Average:        s.Average,
		AverageDisplay: i18n.FormatPrice(s.Average, i18n.DefaultCurrency),
		Monthly:        monthly,
		Recent:         p.jobs(s.Recent).Items,
	}
}

func (p presenter) categories() []categoryResponse {
	out := make([]categoryResponse, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, categoryResponse{Value: c, Label: p.tr.T(p.lang, "category."+c)})
	}
	return out
}

func (p presenter) report(r *domain.Report) reportResponse {
	return reportResponse{
		ID:           r.ID,
		JobID:        r.JobID,
		ReporterID:   r.ReporterID,
		ReporterName: i18n.FormatName(p.lang, r.ReporterName),
		Reason:       r.Reason,
		Description:  r.Description,
		Status:       string(r.Status),
		StatusLabel:  p.tr.T(p.lang, "report."+string(r.Status)),
		CreatedAt:    formatTime(r.CreatedAt),
		ReviewedAt:   formatTimePtr(r.ReviewedAt),
		ReviewedBy:   r.ReviewedBy,
	}
}

// --- Users ---

func (p presenter) user(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      i18n.FormatName(p.lang, u.Name),
		FullName:  u.Name,
		Email:     u.Email,
		Role:      u.Role,
		RoleLabel: p.tr.T(p.lang, "role."+u.Role),
		Avatar:    u.Avatar,
		IsBlocked: u.IsBlocked,
		Rating:    u.Rating,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func (p presenter) adminUser(u domain.AdminUser) adminUserResponse {
	resp := adminUserResponse{
		userResponse:     p.user(&u.User),
		RegistrationDate: u.CreatedAt.UTC().Format("2006-01-02"),
		TotalJobs:        u.TotalJobs,
		CompletedJobs:    u.CompletedJobs,
	}
	if !u.LastActivity.IsZero() {
		resp.LastActivity = formatTime(u.LastActivity)
	}
	return resp
}

func (p presenter) adminJob(j domain.AdminJob) adminJobResponse {
	return adminJobResponse{
		jobResponse:  p.job(&j.Job),
		ReportsCount: j.ReportsCount,
		LastReported: formatTimePtr(j.LastReported),
	}
}

// --- Chat ---

func (p presenter) message(m *domain.Message) messageResponse {
	return messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     i18n.FormatName(p.lang, m.SenderName),
		Content:        m.Content,
		Timestamp:      formatTime(m.Timestamp),
		IsRead:         m.IsRead,
	}
}

func (p presenter) messages(list []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, p.message(m))
	}
	return out
}

func (p presenter) conversation(v *ports.ConversationView) conversationResponse {
	c := v.Conversation
	resp := conversationResponse{
		ID:           c.ID,
		JobID:        c.JobID,
		ClientID:     c.ClientID,
		ExecutorID:   c.ExecutorID,
		ClientName:   i18n.FormatName(p.lang, c.ClientName),
		ExecutorName: i18n.FormatName(p.lang, c.ExecutorName),
		UnreadCount:  v.UnreadCount,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
	if c.LastMessage != nil {
		m := p.message(c.LastMessage)
		resp.LastMessage = &m
	}
	return resp
}

// --- Notifications ---

func (p presenter) notifications(l *ports.NotificationList) notificationListResponse {
	items := make([]notificationResponse, 0, len(l.Items))
	for _, n := range l.Items {
		title, message := n.Title, n.Message
		if n.Key != "" {
			title = p.tr.Format(p.lang, n.Key+".title", n.Args)
			message = p.tr.Format(p.lang, n.Key+".message", n.Args)
		}
		items = append(items, notificationResponse{
			ID:        n.ID,
			Title:     title,
			Message:   message,
			Type:      string(n.Type),
			IsRead:    n.IsRead,
			CreatedAt: formatTime(n.CreatedAt),
		})
	}
	return notificationListResponse{Items: items, Unread: l.Unread}
}

// --- Request → Service input ---

func toCreateJobInput(req createJobRequest, client ports.Actor, idempotencyKey string) ports.CreateJobInput {
	return ports.CreateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		Currency:       i18n.NormalizeCurrency(req.Currency),
		Deadline:       req.Deadline,
		Location:       req.Location,
		Urgency:        domain.Urgency(req.Urgency),
		Client:         client,
		IdempotencyKey: idempotencyKey,
	}
}

func toUpdateJobInput(req updateJobRequest, jobID string, actor ports.Actor) ports.UpdateJobInput {
	in := ports.UpdateJobInput{
		JobID:       jobID,
		Actor:       actor,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Deadline:    req.Deadline,
		Location:    req.Location,
	}
	if req.Currency != nil {
		cur := i18n.NormalizeCurrency(*req.Currency)
		in.Currency = &cur
	}
	if req.Urgency != nil {
		u := domain.Urgency(*req.Urgency)
		in.Urgency = &u
	}
	return in
}

func toJobFilter(q jobListQuery) domain.JobFilter {
	return domain.JobFilter{
		Category:       q.Category,
		Urgency:        domain.Urgency(q.Urgency),
		MinPrice:       q.MinPrice,
		MaxPrice:       q.MaxPrice,
		Location:       q.Location,
		Search:         q.Search,
		IncludeBlocked: q.IncludeBlocked,
	}
}
