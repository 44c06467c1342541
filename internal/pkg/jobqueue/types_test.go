package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionAccountJobPayloadRoundTrip(t *testing.T) {
	payload := ProvisionAccountJobPayload{UserID: 42}

	restored, err := ProvisionAccountJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(42), restored.UserID)
}

func TestProvisionAccountJobPayloadFromMapRejectsGarbage(t *testing.T) {
	_, err := ProvisionAccountJobPayloadFromMap(map[string]interface{}{
		"user_id": "not-a-number",
	})
	assert.Error(t, err)
}

func TestJobLifecycle(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("jellyfin unreachable")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsFailed("jellyfin unreachable")
	assert.False(t, job.IsRetryable(), "retries are spent")

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	assert.NotNil(t, job.CompletedAt)
}
