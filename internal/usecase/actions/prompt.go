package actions

import (
	"fmt"
	"strings"
)

const systemPrompt = `You extract concrete commitments from one-on-one meeting transcripts.
Answer with a single JSON object and nothing else.`

// BuildPrompt names both participants by role and pins the response schema
func BuildPrompt(leaderName, collaboratorName, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The transcript below is a one-on-one between the leader %q and the collaborator %q.\n", leaderName, collaboratorName)
	b.WriteString(`Extract every action item someone committed to. Ignore vague intentions and small talk.
Write "text" in the same language as the transcript.

Return exactly this JSON schema:
{
  "summary": "two or three sentence summary of the conversation",
  "actions": [
    {
      "text": "what must be done",
      "assignee": "leader" | "collaborator",
      "due_date_hint": "deadline phrase as spoken, e.g. \"next Friday\", \"15/03\", or null",
      "category": "task" | "development" | "feedback" | "follow_up" | "process" | "other",
      "confidence": 0.0 to 1.0
    }
  ]
}
If there are no action items return "actions": [].

Transcript:
`)
	b.WriteString(transcript)
	return b.String()
}
