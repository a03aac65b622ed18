package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJobStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "ASSIGNED", "IN_PROGRESS", "COMPLETED", "CANCELLED", "DISPUTED"} {
		got, err := ParseJobStatus(s)
		assert.NoError(t, err)
		assert.Equal(t, JobStatus(s), got)
	}

	_, err := ParseJobStatus("pending")
	assert.Error(t, err, "statuses are case sensitive")

	_, err = ParseJobStatus("ARCHIVED")
	assert.Error(t, err)
}

func TestIsJobTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusAssigned, true},
		{JobStatusPending, JobStatusInProgress, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusAssigned, JobStatusInProgress, true},
		{JobStatusAssigned, JobStatusCancelled, true},
		{JobStatusAssigned, JobStatusPending, false},
		{JobStatusInProgress, JobStatusCompleted, true},
		{JobStatusInProgress, JobStatusDisputed, true},
		{JobStatusInProgress, JobStatusCancelled, false},
		{JobStatusDisputed, JobStatusCompleted, true},
		{JobStatusDisputed, JobStatusCancelled, true},
		{JobStatusCompleted, JobStatusPending, false},
		{JobStatusCompleted, JobStatusDisputed, false},
		{JobStatusCancelled, JobStatusPending, false},
	}

	for _, tt := range tests {
		got := IsJobTransitionAllowed(tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}
