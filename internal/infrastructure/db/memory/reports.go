package memory

import (
	"context"
	"sync"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

type ReportRepository struct {
	mu      sync.RWMutex
	reports []*domain.Report
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

func cloneReport(r *domain.Report) *domain.Report {
	out := *r
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		out.ReviewedAt = &t
	}
	return &out
}

func (r *ReportRepository) Create(_ context.Context, rep *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = prepend(r.reports, cloneReport(rep))
	return nil
}

func (r *ReportRepository) FindByID(_ context.Context, id string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := indexOf(r.reports, func(x *domain.Report) bool { return x.ID == id })
	if i < 0 {
		return nil, domain.ErrReportNotFound
	}
	return cloneReport(r.reports[i]), nil
}

func (r *ReportRepository) Update(_ context.Context, rep *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.reports, func(x *domain.Report) bool { return x.ID == rep.ID })
	if i < 0 {
		return domain.ErrReportNotFound
	}
	r.reports[i] = cloneReport(rep)
	return nil
}

func (r *ReportRepository) List(_ context.Context, status domain.ReportStatus) ([]*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Report, 0, len(r.reports))
	for _, rep := range r.reports {
		if status == "" || rep.Status == status {
			out = append(out, cloneReport(rep))
		}
	}
	return out, nil
}
