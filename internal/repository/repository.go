package repository

import (
	"sync"

	"github.com/Dan9191/challenge-service/internal/models"
)

// Repository is the in-memory store for users, challenges and submissions.
// Every collection keeps insertion order. Reads return copies.
type Repository struct {
	mu              sync.RWMutex
	users           []models.User
	challenges      []models.Challenge
	submissions     []models.Submission
	lastChallengeID int64
}

// NewRepository initializes an empty repository
func NewRepository() *Repository {
	return &Repository{}
}

// CreateUser appends a user. Duplicate usernames are accepted.
func (r *Repository) CreateUser(user models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
}

// FindUsersByUsername returns every user registered under username, in registration order
func (r *Repository) FindUsersByUsername(username string) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []models.User
	for _, u := range r.users {
		if u.Username == username {
			found = append(found, u)
		}
	}
	return found
}

// CreateChallenge assigns the next id and appends the challenge
func (r *Repository) CreateChallenge(challenge *models.Challenge) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastChallengeID++
	challenge.ID = r.lastChallengeID
	if challenge.Submissions == nil {
		challenge.Submissions = []models.Submission{}
	}
	r.challenges = append(r.challenges, cloneChallenge(*challenge))
}

// ListChallenges returns all challenges in creation order
func (r *Repository) ListChallenges() []models.Challenge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Challenge, len(r.challenges))
	for i, c := range r.challenges {
		out[i] = cloneChallenge(c)
	}
	return out
}

// MediaURLs returns the set of media urls referenced by challenges
func (r *Repository) MediaURLs() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make(map[string]struct{})
	for _, c := range r.challenges {
		if c.MediaURL != nil {
			urls[*c.MediaURL] = struct{}{}
		}
	}
	return urls
}

// AddSubmission appends a submission. Used for seeding; no HTTP route creates submissions.
func (r *Repository) AddSubmission(submission models.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, cloneSubmission(submission))
}

// ListSubmissions returns all submissions in storage order
func (r *Repository) ListSubmissions() []models.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSubmissions(r.submissions)
}

// FindSubmissionsByUsername returns the submissions authored by username
func (r *Repository) FindSubmissionsByUsername(username string) []models.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := []models.Submission{}
	for _, s := range r.submissions {
		if s.Username == username {
			found = append(found, cloneSubmission(s))
		}
	}
	return found
}

// Snapshot returns submissions and challenges read under a single lock
func (r *Repository) Snapshot() ([]models.Submission, []models.Challenge) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	challenges := make([]models.Challenge, len(r.challenges))
	for i, c := range r.challenges {
		challenges[i] = cloneChallenge(c)
	}
	return cloneSubmissions(r.submissions), challenges
}

func cloneChallenge(c models.Challenge) models.Challenge {
	c.Tags = append([]string(nil), c.Tags...)
	if c.MediaURL != nil {
		url := *c.MediaURL
		c.MediaURL = &url
	}
	c.Submissions = cloneSubmissions(c.Submissions)
	return c
}

func cloneSubmission(s models.Submission) models.Submission {
	if s.Reactions != nil {
		s.Reactions = append([]models.Reaction(nil), s.Reactions...)
	}
	return s
}

func cloneSubmissions(in []models.Submission) []models.Submission {
	out := make([]models.Submission, len(in))
	for i, s := range in {
		out[i] = cloneSubmission(s)
	}
	return out
}
