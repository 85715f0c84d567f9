package handler

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/errors"
	meetingDTO "github.com/johnquangdev/peopleops/internal/adapter/dto/meeting"
	"github.com/johnquangdev/peopleops/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/peopleops/internal/usecase/actions"
	ucErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
	"github.com/johnquangdev/peopleops/pkg/validator"
)

// DefaultExtractTimeout bounds a run when no timeout is configured
const DefaultExtractTimeout = 5 * time.Minute

// OneOnOne handles one-on-one processing endpoints
type OneOnOne struct {
	extractor actions.Service
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOneOnOneHandler creates a new one-on-one handler. timeout bounds each
// extraction independently of the caller's connection.
func NewOneOnOneHandler(svc actions.Service, timeout time.Duration, logger *zap.Logger) *OneOnOne {
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	return &OneOnOne{extractor: svc, timeout: timeout, logger: logger}
}

// ExtractActions runs transcript action extraction for a one-on-one
// @Summary      Extract one-on-one actions
// @Description  Summarises the linked transcript and replaces AI-extracted actions
// @Tags         OneOnOnes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meetingDTO.ExtractActionsRequest  true  "Extraction request"
// @Success      200      {object}  meetingDTO.ExtractActionsResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse
// @Failure      502      {object}  common.ErrorResponse
// @Router       /one-on-ones/extract-actions [post]
func (h *OneOnOne) ExtractActions(c echo.Context) error {
	var req meetingDTO.ExtractActionsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		appErr := errors.ErrInvalidArgument("Invalid extraction request")
		for field, msg := range validator.FieldErrors(err) {
			appErr = appErr.WithDetail(field, msg)
		}
		return HandleError(h.logger, c, appErr)
	}

	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		parsed, err := uuid.Parse(strings.TrimSpace(req.TenantID))
		if err != nil {
			return HandleError(h.logger, c, errors.ErrMissingTenant())
		}
		tenantID = parsed
	}

	input := actions.ExtractInput{
		TenantID:   tenantID,
		OneOnOneID: uuid.MustParse(req.OneOnOneID),
	}
	if req.MeetingID != "" {
		id := uuid.MustParse(req.MeetingID)
		input.MeetingID = &id
	}

	// The trigger caller may hang up before the model answers; the run must not die with it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.timeout)
	defer cancel()

	result, err := h.extractor.Extract(ctx, input)
	if err != nil {
		return HandleError(h.logger, c, mapExtractionError(req.OneOnOneID, err))
	}

	return HandleSuccess(h.logger, c, meetingDTO.ExtractActionsResponse{
		OK:               true,
		OneOnOneID:       result.OneOnOneID.String(),
		MeetingID:        result.MeetingID.String(),
		ProcessingLogID:  result.ProcessingLogID.String(),
		Summary:          result.Summary,
		ActionsExtracted: result.ActionsExtracted,
		ActionsDiscarded: result.ActionsDiscarded,
		ParseMethod:      string(result.ParseMethod),
		TranscriptSource: result.TranscriptSource,
		Truncated:        result.Truncated,
	})
}

func mapExtractionError(oneOnOneID string, err error) error {
	switch {
	case stdErrors.Is(err, ucErrors.ErrOneOnOneNotFound):
		return errors.ErrOneOnOneNotFound(oneOnOneID)
	case stdErrors.Is(err, ucErrors.ErrMeetingNotLinked),
		stdErrors.Is(err, ucErrors.ErrMeetingNotFound),
		stdErrors.Is(err, ucErrors.ErrTranscriptTooShort):
		return errors.ErrNoTranscript(err)
	case stdErrors.Is(err, ucErrors.ErrExtractionInProgress):
		return errors.ErrExtractionInProgress(oneOnOneID)
	case stdErrors.Is(err, ucErrors.ErrModelCallFailed), stdErrors.Is(err, ucErrors.ErrUnparsableResponse):
		return errors.ErrExtractionFailed(err)
	default:
		return errors.ErrDBQueryFailed("extract actions", err)
	}
}
