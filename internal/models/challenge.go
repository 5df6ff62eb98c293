package models

// Challenge represents a posted activity prompt
type Challenge struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	MediaURL    *string      `json:"mediaUrl"`
	Submissions []Submission `json:"submissions"`
}
