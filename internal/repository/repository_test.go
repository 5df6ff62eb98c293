package repository

import (
	"strings"
	"sync"
	"testing"

	"github.com/Dan9191/challenge-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChallengeAssignsSequentialIDs(t *testing.T) {
	repo := NewRepository()

	first := &models.Challenge{Title: "one", Tags: []string{"a"}}
	second := &models.Challenge{Title: "two", Tags: []string{"b"}}
	repo.CreateChallenge(first)
	repo.CreateChallenge(second)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.NotNil(t, first.Submissions)

	list := repo.ListChallenges()
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Title)
	assert.Equal(t, "two", list[1].Title)
}

func TestCreateChallengeConcurrentIDsAreUnique(t *testing.T) {
	repo := NewRepository()
	const writers = 64

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.CreateChallenge(&models.Challenge{Title: "t"})
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, c := range repo.ListChallenges() {
		assert.False(t, seen[c.ID], "duplicate id %d", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, seen, writers)
}

func TestListChallengesReturnsCopies(t *testing.T) {
	repo := NewRepository()
	url := "/uploads/x.png"
	repo.CreateChallenge(&models.Challenge{Title: "t", Tags: []string{"a"}, MediaURL: &url})

	list := repo.ListChallenges()
	list[0].Tags[0] = "changed"
	*list[0].MediaURL = "changed"

	again := repo.ListChallenges()
	assert.Equal(t, "a", again[0].Tags[0])
	assert.Equal(t, "/uploads/x.png", *again[0].MediaURL)
}

func TestFindUsersByUsernameKeepsRegistrationOrder(t *testing.T) {
	repo := NewRepository()
	repo.CreateUser(models.User{Username: "ann", Email: "first@test"})
	repo.CreateUser(models.User{Username: "bob", Email: "bob@test"})
	repo.CreateUser(models.User{Username: "ann", Email: "second@test"})

	users := repo.FindUsersByUsername("ann")
	require.Len(t, users, 2)
	assert.Equal(t, "first@test", users[0].Email)
	assert.Equal(t, "second@test", users[1].Email)
	assert.Empty(t, repo.FindUsersByUsername("nobody"))
}

func TestSubmissionsQueries(t *testing.T) {
	repo := NewRepository()
	repo.AddSubmission(models.Submission{Username: "ann", ChallengeTitle: "run"})
	repo.AddSubmission(models.Submission{Username: "bob", ChallengeTitle: "run"})
	repo.AddSubmission(models.Submission{Username: "ann", ChallengeTitle: "swim"})

	all := repo.ListSubmissions()
	require.Len(t, all, 3)
	assert.Equal(t, "bob", all[1].Username)

	ann := repo.FindSubmissionsByUsername("ann")
	require.Len(t, ann, 2)
	assert.Equal(t, "run", ann[0].ChallengeTitle)
	assert.Equal(t, "swim", ann[1].ChallengeTitle)

	none := repo.FindSubmissionsByUsername("carl")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMediaURLs(t *testing.T) {
	repo := NewRepository()
	url := "/uploads/1-a.png"
	repo.CreateChallenge(&models.Challenge{Title: "with", MediaURL: &url})
	repo.CreateChallenge(&models.Challenge{Title: "without"})

	urls := repo.MediaURLs()
	assert.Len(t, urls, 1)
	assert.Contains(t, urls, url)
}

func TestLoadSeed(t *testing.T) {
	repo := NewRepository()
	seed := `{
		"challenges": [{"id": 99, "title": "run", "description": "d", "tags": ["fit", "out"]}],
		"submissions": [
			{"username": "ann", "challengeTitle": "run", "reactions": [{"username": "bob"}]},
			{"username": "bob", "challengeTitle": "run"}
		]
	}`

	challenges, submissions, err := repo.LoadSeed(strings.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, 1, challenges)
	assert.Equal(t, 2, submissions)

	list := repo.ListChallenges()
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	subs, chs := repo.Snapshot()
	assert.Len(t, subs, 2)
	assert.Len(t, chs, 1)
	assert.Equal(t, []models.Reaction{{Username: "bob"}}, subs[0].Reactions)
}

func TestLoadSeedRejectsInvalidJSON(t *testing.T) {
	repo := NewRepository()
	_, _, err := repo.LoadSeed(strings.NewReader("{"))
	assert.Error(t, err)

	_, _, err = repo.LoadSeedFile("does-not-exist.json")
	assert.Error(t, err)
}
