package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Dan9191/challenge-service/internal/models"
)

// SeedData is the layout of a seed file
type SeedData struct {
	Challenges  []models.Challenge  `json:"challenges"`
	Submissions []models.Submission `json:"submissions"`
}

// LoadSeed reads seed data from r into the repository.
// Challenge ids in the input are ignored and reassigned.
func (r *Repository) LoadSeed(src io.Reader) (int, int, error) {
	var data SeedData
	if err := json.NewDecoder(src).Decode(&data); err != nil {
		return 0, 0, fmt.Errorf("failed to decode seed data: %w", err)
	}
	for i := range data.Challenges {
		r.CreateChallenge(&data.Challenges[i])
	}
	for _, s := range data.Submissions {
		r.AddSubmission(s)
	}
	return len(data.Challenges), len(data.Submissions), nil
}

// LoadSeedFile opens path and loads it with LoadSeed
func (r *Repository) LoadSeedFile(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return r.LoadSeed(f)
}
