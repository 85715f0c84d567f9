package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJobBegin_CarriesMetadataAndDeadline(t *testing.T) {
	tenant := uuid.New()
	ctx, cancel := JobBegin(context.Background(), JobTypeExtractionTrigger, tenant, time.Second)
	defer cancel()

	meta := GetJobMetadata(ctx)
	assert.NotEqual(t, uuid.Nil, meta.JobID)
	assert.Equal(t, JobTypeExtractionTrigger, meta.JobType)
	assert.Equal(t, tenant, meta.TenantID)
	assert.False(t, meta.StartTime.IsZero())

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{fmt.Errorf("call: %w", context.Canceled), false},
		{errors.New("error, status code: 429, message: rate limit reached"), true},
		{errors.New("error, status code: 503, message: overloaded"), true},
		{errors.New("error, status code: 401, message: invalid api key"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsRetryableError(c.err), "%v", c.err)
	}
}
