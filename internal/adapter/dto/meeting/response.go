package meeting

// IngestResponse is returned after a notification is ingested
type IngestResponse struct {
	OK              bool    `json:"ok"`
	MeetingID       string  `json:"meeting_id"`
	Action          string  `json:"action"`
	PraisesDetected int     `json:"praises_detected"`
	LinkedOneOnOne  *string `json:"linked_one_on_one"`
}

// ExtractActionsResponse is returned after a successful extraction
type ExtractActionsResponse struct {
	OK               bool   `json:"ok"`
	OneOnOneID       string `json:"one_on_one_id"`
	MeetingID        string `json:"meeting_id"`
	ProcessingLogID  string `json:"processing_log_id"`
	Summary          string `json:"summary"`
	ActionsExtracted int    `json:"actions_extracted"`
	ActionsDiscarded int    `json:"actions_discarded"`
	ParseMethod      string `json:"parse_method"`
	TranscriptSource string `json:"transcript_source"`
	Truncated        bool   `json:"truncated"`
}
