package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, JobOpen.CanTransitionTo(JobInProgress))
	assert.True(t, JobOpen.CanTransitionTo(JobCancelled))
	assert.True(t, JobInProgress.CanTransitionTo(JobCompleted))
	assert.True(t, JobInProgress.CanTransitionTo(JobCancelled))

	assert.False(t, JobOpen.CanTransitionTo(JobCompleted))
	assert.False(t, JobCancelled.CanTransitionTo(JobCompleted))
	assert.False(t, JobCompleted.CanTransitionTo(JobCancelled))
	assert.False(t, JobInProgress.CanTransitionTo(JobOpen))
}

func TestReportStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ReportPending.CanTransitionTo(ReportReviewed))
	assert.True(t, ReportPending.CanTransitionTo(ReportDismissed))
	assert.True(t, ReportReviewed.CanTransitionTo(ReportResolved))
	assert.False(t, ReportResolved.CanTransitionTo(ReportPending))
	assert.False(t, ReportDismissed.CanTransitionTo(ReportReviewed))
	assert.False(t, ReportReviewed.CanTransitionTo(ReportPending))
}

func TestComputeStatistics(t *testing.T) {
	users := []*User{{ID: "a"}, {ID: "b", IsBlocked: true}, {ID: "c"}}
	jobs := []*Job{
		{ID: "1", Status: JobCompleted},
		{ID: "2", Status: JobOpen, IsBlocked: true},
		{ID: "3", Status: JobCompleted, IsBlocked: true},
	}
	reports := []*Report{{ID: "r1"}}

	s := ComputeStatistics(users, jobs, reports)
	assert.Equal(t, Statistics{
		TotalUsers:    3,
		ActiveUsers:   2,
		BlockedUsers:  1,
		TotalJobs:     3,
		CompletedJobs: 2,
		BlockedJobs:   2,
		TotalReports:  1,
	}, s)
	assert.Equal(t, s.TotalUsers, s.ActiveUsers+s.BlockedUsers)
}

func TestConversation_UnreadCounters(t *testing.T) {
	c := &Conversation{ClientID: "client", ExecutorID: "exec", ClientName: "Айгуль", ExecutorName: "Бакыт"}
	msg := &Message{ID: "m1", SenderID: "client", Content: "hi", Timestamp: time.Now()}

	c.RecordIncoming(msg)
	assert.Equal(t, 0, c.UnreadFor("client"))
	assert.Equal(t, 1, c.UnreadFor("exec"))
	assert.Same(t, msg, c.LastMessage)
	assert.Equal(t, msg.Timestamp, c.UpdatedAt)

	c.ResetUnread("exec")
	assert.Equal(t, 0, c.UnreadFor("exec"))

	id, name := c.Counterpart("exec")
	assert.Equal(t, "client", id)
	assert.Equal(t, "Айгуль", name)
	assert.False(t, c.IsParticipant("stranger"))
	assert.False(t, c.IsParticipant(""))
}

func TestNewID(t *testing.T) {
	a, b := NewID("job"), NewID("job")
	require.True(t, strings.HasPrefix(a, "job_"))
	assert.NotEqual(t, a, b)
}

func TestIsKnownCategory(t *testing.T) {
	assert.True(t, IsKnownCategory("Дизайн"))
	assert.False(t, IsKnownCategory("Design"))
}
