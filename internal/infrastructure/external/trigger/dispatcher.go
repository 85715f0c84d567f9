package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/pkg/jobcontext"
	"github.com/johnquangdev/peopleops/pkg/jwt"
	"github.com/johnquangdev/peopleops/pkg/metrics"
)

// TokenIssuer signs the bearer token sent with each trigger
type TokenIssuer interface {
	GenerateServiceToken(tenantID uuid.UUID, scope string) (string, error)
}

// Request is the body posted to the extraction endpoint
type Request struct {
	OneOnOneID string `json:"one_on_one_id"`
	TenantID   string `json:"tenant_id"`
	MeetingID  string `json:"meeting_id,omitempty"`
}

// HTTPDispatcher fires extraction requests in the background. The caller never
// waits for, or sees the outcome of, a dispatch.
type HTTPDispatcher struct {
	url          string
	tenantHeader string
	timeout      time.Duration
	client       *http.Client
	tokens       TokenIssuer
	metrics      *metrics.Metrics
	logger       *zap.Logger
	wg           sync.WaitGroup
}

// NewHTTPDispatcher creates a dispatcher posting to url
func NewHTTPDispatcher(url, tenantHeader string, timeout time.Duration, tokens TokenIssuer, m *metrics.Metrics, logger *zap.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{
		url:          url,
		tenantHeader: tenantHeader,
		timeout:      timeout,
		client:       &http.Client{},
		tokens:       tokens,
		metrics:      m,
		logger:       logger,
	}
}

// Dispatch starts the request on its own goroutine and returns immediately
func (d *HTTPDispatcher) Dispatch(tenantID, oneOnOneID, meetingID uuid.UUID) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// Detached from the request context so the response can return first
		ctx, cancel := jobcontext.JobBegin(context.Background(), jobcontext.JobTypeExtractionTrigger, tenantID, d.timeout)
		defer cancel()

		err := d.send(ctx, tenantID, oneOnOneID, meetingID)
		meta := jobcontext.GetJobMetadata(ctx)
		if err != nil {
			d.metrics.RecordTrigger("failed")
			if d.logger != nil {
				d.logger.Warn("extraction_trigger_failed",
					zap.String("job_id", meta.JobID.String()),
					zap.String("one_on_one_id", oneOnOneID.String()),
					zap.String("meeting_id", meetingID.String()),
					zap.Duration("elapsed", time.Since(meta.StartTime)),
					zap.Error(err),
				)
			}
			return
		}
		d.metrics.RecordTrigger("sent")
		if d.logger != nil {
			d.logger.Info("extraction_trigger_sent",
				zap.String("job_id", meta.JobID.String()),
				zap.String("one_on_one_id", oneOnOneID.String()),
				zap.Duration("elapsed", time.Since(meta.StartTime)),
			)
		}
	}()
}

// Wait blocks until in-flight dispatches finish; used on shutdown and in tests
func (d *HTTPDispatcher) Wait() {
	d.wg.Wait()
}

func (d *HTTPDispatcher) send(ctx context.Context, tenantID, oneOnOneID, meetingID uuid.UUID) error {
	body, err := json.Marshal(Request{
		OneOnOneID: oneOnOneID.String(),
		TenantID:   tenantID.String(),
		MeetingID:  meetingID.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(d.tenantHeader, tenantID.String())

	token, err := d.tokens.GenerateServiceToken(tenantID, jwt.ServiceScopeExtract)
	if err != nil {
		return fmt.Errorf("failed to sign trigger token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("extraction endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
