package types

import "fmt"

const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// TranscriptMessage is one utterance of a conversation, tagged with the
// party that spoke it.
type TranscriptMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Transcript is the ordered message sequence of one conversation. It is
// immutable once captured.
type Transcript []TranscriptMessage

// Render formats the transcript the way the grading prompt embeds it,
// one "role: message" line per turn.
func (t Transcript) Render() string {
	out := ""
	for i, msg := range t {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%s: %s", msg.Role, msg.Message)
	}
	return out
}
