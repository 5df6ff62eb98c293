package models

// UserStats represents the per-user activity summary
type UserStats struct {
	Grade             string   `json:"grade"`
	SubmissionsCount  int      `json:"submissionsCount"`
	ReactionsGiven    int      `json:"reactionsGiven"`
	ReactionsReceived int      `json:"reactionsReceived"`
	TopCategories     []string `json:"topCategories"`
}
