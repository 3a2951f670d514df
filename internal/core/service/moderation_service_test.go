package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

func newModeration(f *fixture) *ModerationService {
	return NewModerationService(f.repos.Users, f.repos.Jobs, f.repos.Reports, zerolog.Nop())
}

func TestModerationService_BlockUnblockKeepsTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := newModeration(f)

	stats, err := mod.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 3, stats.ActiveUsers)
	assert.Equal(t, 0, stats.BlockedUsers)

	for i := 0; i < 2; i++ {
		u, err := mod.BlockUser(ctx, f.executor.ID, f.admin)
		require.NoError(t, err)
		assert.True(t, u.IsBlocked)
	}

	stats, _ = mod.Statistics(ctx)
	assert.Equal(t, 2, stats.ActiveUsers)
	assert.Equal(t, 1, stats.BlockedUsers)
	assert.Equal(t, stats.TotalUsers, stats.ActiveUsers+stats.BlockedUsers)

	_, err = mod.UnblockUser(ctx, f.executor.ID)
	require.NoError(t, err)
	stats, _ = mod.Statistics(ctx)
	assert.Equal(t, 3, stats.ActiveUsers)
	assert.Equal(t, 0, stats.BlockedUsers)

	_, err = mod.BlockUser(ctx, f.admin.ID, f.admin)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, mod.DeleteUser(ctx, f.admin.ID, f.admin), domain.ErrForbidden)
}

func usersByID(t *testing.T, repo ports.UserRepository) map[string]domain.User {
	t.Helper()
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	out := make(map[string]domain.User, len(list))
	for _, u := range list {
		out[u.ID] = *u
	}
	return out
}

func TestModerationService_BlockUnblockLeavesOtherFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := newModeration(f)
	job := f.postJob(t, "Logo design")
	f.postJob(t, "Website redesign")

	usersBefore := usersByID(t, f.repos.Users)
	jobsBefore := snapshot(t, f.repos.Jobs)

	_, err := mod.BlockUser(ctx, f.executor.ID, f.admin)
	require.NoError(t, err)
	_, err = mod.BlockJob(ctx, job.ID)
	require.NoError(t, err)

	blockedUsers := usersByID(t, f.repos.Users)
	assert.True(t, blockedUsers[f.executor.ID].IsBlocked)
	ignoreUserFlag := cmpopts.IgnoreFields(domain.User{}, "IsBlocked", "UpdatedAt")
	if diff := cmp.Diff(usersBefore, blockedUsers, ignoreUserFlag); diff != "" {
		t.Errorf("blocking changed more than the flag (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(usersBefore[f.client.ID], blockedUsers[f.client.ID]); diff != "" {
		t.Errorf("other users must be untouched (-before +after):\n%s", diff)
	}

	_, err = mod.UnblockUser(ctx, f.executor.ID)
	require.NoError(t, err)
	_, err = mod.UnblockJob(ctx, job.ID)
	require.NoError(t, err)

	ignoreUpdated := cmpopts.IgnoreFields(domain.User{}, "UpdatedAt")
	if diff := cmp.Diff(usersBefore, usersByID(t, f.repos.Users), ignoreUpdated); diff != "" {
		t.Errorf("block then unblock is not a round trip for users (-before +after):\n%s", diff)
	}
	ignoreJobUpdated := cmpopts.IgnoreFields(domain.Job{}, "UpdatedAt")
	if diff := cmp.Diff(jobsBefore, snapshot(t, f.repos.Jobs), ignoreJobUpdated); diff != "" {
		t.Errorf("block then unblock is not a round trip for jobs (-before +after):\n%s", diff)
	}
}

func TestModerationService_ListUsersFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := newModeration(f)
	f.postJob(t, "Logo design")

	_, err := mod.BlockUser(ctx, f.executor.ID, f.admin)
	require.NoError(t, err)

	blocked, err := mod.ListUsers(ctx, ports.UserFilter{Status: "blocked"})
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, f.executor.ID, blocked[0].ID)

	clients, _ := mod.ListUsers(ctx, ports.UserFilter{Role: domain.RoleClient})
	require.Len(t, clients, 1)
	assert.Equal(t, 1, clients[0].TotalJobs)

	found, _ := mod.ListUsers(ctx, ports.UserFilter{Search: "айгуль"})
	assert.Len(t, found, 1)
}

func TestModerationService_JobsAndReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := newModeration(f)
	job := f.postJob(t, "Logo design")

	report, err := mod.FileReport(ctx, ports.FileReportInput{JobID: job.ID, Reporter: f.executor, Reason: "Спам"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportPending, report.Status)

	_, err = mod.FileReport(ctx, ports.FileReportInput{JobID: job.ID, Reporter: f.executor})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = mod.FileReport(ctx, ports.FileReportInput{JobID: "job_missing", Reporter: f.executor, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	jobs, err := mod.ListJobs(ctx, ports.AdminJobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].ReportsCount)
	require.NotNil(t, jobs[0].LastReported)

	blocked, err := mod.BlockJob(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	stats, _ := mod.Statistics(ctx)
	assert.Equal(t, 1, stats.BlockedJobs)
	assert.Equal(t, 1, stats.TotalReports)

	jobs, _ = mod.ListJobs(ctx, ports.AdminJobFilter{})
	assert.Len(t, jobs, 1, "admin list includes blocked jobs")

	_, err = mod.UnblockJob(ctx, job.ID)
	require.NoError(t, err)

	reviewed, err := mod.UpdateReportStatus(ctx, report.ID, domain.ReportReviewed, f.admin)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	same, err := mod.UpdateReportStatus(ctx, report.ID, domain.ReportReviewed, f.admin)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportReviewed, same.Status)

	_, err = mod.UpdateReportStatus(ctx, report.ID, domain.ReportPending, f.admin)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = mod.UpdateReportStatus(ctx, report.ID, "bogus", f.admin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	resolved, err := mod.UpdateReportStatus(ctx, report.ID, domain.ReportResolved, f.admin)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportResolved, resolved.Status)

	pending, _ := mod.ListReports(ctx, domain.ReportPending)
	assert.Empty(t, pending)

	require.NoError(t, mod.DeleteJob(ctx, job.ID))
	stats, _ = mod.Statistics(ctx)
	assert.Equal(t, 0, stats.TotalJobs)
}
