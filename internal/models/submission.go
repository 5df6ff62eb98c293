package models

// Submission represents a user's entry for a challenge.
// ChallengeTitle references Challenge.Title and is not checked.
type Submission struct {
	Username       string     `json:"username"`
	ChallengeTitle string     `json:"challengeTitle"`
	Reactions      []Reaction `json:"reactions,omitempty"`
}

// Reaction identifies the user who reacted to a submission
type Reaction struct {
	Username string `json:"username"`
}
