package mailer

// EmailJob is a single email to render and send. When Template is set,
// Subject, Text and HTML are rendered from it using Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // community_joined, community_left
	Data     map[string]any `json:"data,omitempty"`
}
