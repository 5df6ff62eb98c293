// Package stats derives per-user activity summaries from submissions and challenges.
package stats

import (
	"sort"

	"github.com/Dan9191/challenge-service/internal/models"
)

// Score weights
const (
	submissionWeight       = 5
	reactionGivenWeight    = 1
	reactionReceivedWeight = 2

	topCategoriesLimit = 3
)

// gradeLadder is ordered by descending threshold. Bounds are exclusive.
var gradeLadder = []struct {
	above int
	grade string
}{
	{150, "A+"},
	{120, "A"},
	{100, "B+"},
	{80, "B"},
	{60, "C+"},
	{40, "C"},
	{20, "D"},
}

// Compute builds the summary for userID.
// reactionsGiven counts reactions by userID on every submission, not only the user's own.
func Compute(userID string, submissions []models.Submission, challenges []models.Challenge) models.UserStats {
	var (
		submissionsCount  int
		reactionsGiven    int
		reactionsReceived int
		counter           = newTagCounter()
	)

	for _, s := range submissions {
		for _, r := range s.Reactions {
			if r.Username == userID {
				reactionsGiven++
			}
		}
		if s.Username != userID {
			continue
		}

		submissionsCount++
		reactionsReceived += len(s.Reactions)
		if c := findChallengeByTitle(challenges, s.ChallengeTitle); c != nil {
			for _, tag := range c.Tags {
				counter.add(tag)
			}
		}
	}

	return models.UserStats{
		Grade:             Grade(Score(submissionsCount, reactionsGiven, reactionsReceived)),
		SubmissionsCount:  submissionsCount,
		ReactionsGiven:    reactionsGiven,
		ReactionsReceived: reactionsReceived,
		TopCategories:     counter.top(topCategoriesLimit),
	}
}

// Score applies the weighted activity formula
func Score(submissionsCount, reactionsGiven, reactionsReceived int) int {
	return submissionsCount*submissionWeight +
		reactionsGiven*reactionGivenWeight +
		reactionsReceived*reactionReceivedWeight
}

// Grade maps a score onto the letter ladder
func Grade(score int) string {
	for _, step := range gradeLadder {
		if score > step.above {
			return step.grade
		}
	}
	return "F"
}

// findChallengeByTitle returns the first challenge with the given title
func findChallengeByTitle(challenges []models.Challenge, title string) *models.Challenge {
	for i := range challenges {
		if challenges[i].Title == title {
			return &challenges[i]
		}
	}
	return nil
}

// tagCounter counts tags and remembers first-seen order for tie breaking
type tagCounter struct {
	order  []string
	counts map[string]int
}

func newTagCounter() *tagCounter {
	return &tagCounter{counts: make(map[string]int)}
}

func (tc *tagCounter) add(tag string) {
	if _, ok := tc.counts[tag]; !ok {
		tc.order = append(tc.order, tag)
	}
	tc.counts[tag]++
}

func (tc *tagCounter) top(n int) []string {
	tags := append([]string(nil), tc.order...)
	sort.SliceStable(tags, func(i, j int) bool {
		return tc.counts[tags[i]] > tc.counts[tags[j]]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}
