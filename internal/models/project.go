package models

import "time"

// Project types. A generated project comes out of the remix or
// text-to-image flows; an analysis project is promoted from an image the
// user uploaded to the chat analyzer.
const (
	ProjectTypeGenerated = "generated"
	ProjectTypeAnalysis  = "analysis"
)

// ReasoningUploadedForAnalysis marks projects created by the chat-upload
// flow. The excludeType filter drops these alongside Type == "analysis".
const ReasoningUploadedForAnalysis = "Uploaded for logo analysis."

// ChatTurn is one message in a project's stored conversation.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Project is one record in the projects ledger file.
type Project struct {
	ID                string     `json:"id"`
	UserID            int64      `json:"userId"`
	Title             string     `json:"title"`
	ImageURL          string     `json:"imageUrl"`
	Type              string     `json:"type,omitempty"`
	Reasoning         string     `json:"reasoning,omitempty"`
	ChatHistory       []ChatTurn `json:"chatHistory,omitempty"`
	BrandScore        *int       `json:"brandScore,omitempty"`
	SatisfactionScore *int       `json:"satisfactionScore,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// IsAnalysis reports whether the project came from the chat-upload flow.
func (p Project) IsAnalysis() bool {
	return p.Type == ProjectTypeAnalysis || p.Reasoning == ReasoningUploadedForAnalysis
}
