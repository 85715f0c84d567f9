package handler

import (
	"encoding/json"
	stdErrors "errors"
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/errors"
	meetingDTO "github.com/johnquangdev/peopleops/internal/adapter/dto/meeting"
	"github.com/johnquangdev/peopleops/internal/infrastructure/http/middleware"
	ucErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
	"github.com/johnquangdev/peopleops/internal/usecase/ingestion"
)

// Meeting handles meeting notification webhooks
type Meeting struct {
	ingestion ingestion.Service
	logger    *zap.Logger
}

// NewMeetingHandler creates a new meeting webhook handler
func NewMeetingHandler(svc ingestion.Service, logger *zap.Logger) *Meeting {
	return &Meeting{ingestion: svc, logger: logger}
}

// IngestNotification receives a "transcript ready" notification
// @Summary      Meeting transcript webhook
// @Description  Upserts the meeting, records detected recognitions and links a one-on-one
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Secret  header    string                            true  "Shared secret"
// @Param        X-Tenant-Id       header    string                            true  "Tenant id"
// @Param        request           body      meetingDTO.NotificationRequest    true  "Notification"
// @Success      200               {object}  meetingDTO.IngestResponse
// @Failure      400               {object}  common.ErrorResponse
// @Failure      401               {object}  common.ErrorResponse
// @Failure      429               {object}  common.ErrorResponse
// @Router       /webhooks/meetings [post]
func (h *Meeting) IngestNotification(c echo.Context) error {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrMissingTenant())
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	var req meetingDTO.NotificationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload().WithDetail("body", err.Error()))
	}

	occurredAt, err := req.OccurredAt()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid meeting date").WithDetail("date", err.Error()))
	}

	input := ingestion.NotificationInput{
		TenantID:        tenantID,
		ExternalID:      req.ExternalID(),
		Title:           req.Title,
		OccurredAt:      occurredAt,
		DurationMinutes: req.DurationMinutes(),
		Summary:         req.Summary,
		Transcript:      req.Transcript,
		Notes:           req.Notes,
		TranscriptURL:   req.TranscriptURL,
		AudioURL:        req.AudioURL,
		OrganizerEmail:  req.OrganizerEmail,
		HostEmail:       req.HostEmail,
		RawPayload:      raw,
	}
	for _, p := range req.Participants {
		input.Participants = append(input.Participants, ingestion.ParticipantInput{
			Email:       p.Email,
			DisplayName: p.DisplayName,
		})
	}
	for _, s := range req.Sentences {
		input.Sentences = append(input.Sentences, ingestion.SentenceInput{
			Index:       s.Index,
			SpeakerName: s.SpeakerName,
			Text:        s.Text,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		})
	}

	result, err := h.ingestion.Ingest(c.Request().Context(), input)
	if err != nil {
		return HandleError(h.logger, c, mapIngestionError(tenantID.String(), err))
	}

	resp := meetingDTO.IngestResponse{
		OK:              true,
		MeetingID:       result.MeetingID.String(),
		Action:          string(result.Action),
		PraisesDetected: result.PraisesDetected,
	}
	if result.LinkedOneOnOne != nil {
		id := result.LinkedOneOnOne.String()
		resp.LinkedOneOnOne = &id
	}
	return HandleSuccess(h.logger, c, resp)
}

func mapIngestionError(tenantID string, err error) error {
	switch {
	case stdErrors.Is(err, ucErrors.ErrMeetingIDRequired):
		return errors.ErrMeetingIDRequired()
	case stdErrors.Is(err, ucErrors.ErrTenantNotFound), stdErrors.Is(err, ucErrors.ErrTenantInactive):
		return errors.ErrTenantNotFound(tenantID)
	default:
		return errors.ErrDBQueryFailed("ingest meeting", err)
	}
}
