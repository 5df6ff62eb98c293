package service

import (
	"fmt"
	"io"
	"time"

	"github.com/Dan9191/challenge-service/internal/config"
	"github.com/Dan9191/challenge-service/internal/models"
	"github.com/Dan9191/challenge-service/internal/repository"
	"github.com/Dan9191/challenge-service/internal/stats"
	"github.com/Dan9191/challenge-service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// MediaStore persists uploaded media and returns its public url
type MediaStore interface {
	Save(originalName string, src io.Reader) (string, error)
}

// Notifier is told about new registrations
type Notifier interface {
	SendWelcome(to, username string) error
}

// Media is an uploaded file attached to a new challenge
type Media struct {
	Filename string
	Content  io.Reader
}

// Service handles business logic
type Service struct {
	repo     *repository.Repository
	media    MediaStore
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. notifier may be nil.
func NewService(repo *repository.Repository, media MediaStore, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, media: media, notifier: notifier, log: log, config: cfg}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) error {
	if utils.AnyEmpty(username, password, email) {
		return &ValidationError{Message: "Username, password, and email are required"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.repo.CreateUser(models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	})
	s.log.Infof("User registered: %s", username)

	if s.notifier != nil {
		go func() {
			if err := s.notifier.SendWelcome(email, username); err != nil {
				s.log.Warnf("Welcome email for %s not sent: %v", username, err)
			}
		}()
	}
	return nil
}

// Login checks credentials against registered users and returns a JWT.
// With duplicate usernames the earliest registration whose password matches wins.
func (s *Service) Login(username, password string) (string, error) {
	if utils.AnyEmpty(username, password) {
		return "", &ValidationError{Message: "Username and password are required"}
	}

	var user *models.User
	for _, candidate := range s.repo.FindUsersByUsername(username) {
		if bcrypt.CompareHashAndPassword([]byte(candidate.PasswordHash), []byte(password)) == nil {
			user = &candidate
			break
		}
	}
	if user == nil {
		s.log.Infof("Failed login for %s", username)
		return "", &AuthError{Message: "Invalid credentials"}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return tokenString, nil
}

// CreateChallenge validates input, stores optional media and appends the challenge
func (s *Service) CreateChallenge(title, description, tags string, media *Media) (*models.Challenge, error) {
	if utils.AnyEmpty(title, description, tags) {
		return nil, &ValidationError{Message: "Title, description, and tags are required."}
	}

	challenge := &models.Challenge{
		Title:       title,
		Description: description,
		Tags:        utils.SplitTags(tags),
		Submissions: []models.Submission{},
	}

	if media != nil {
		url, err := s.media.Save(media.Filename, media.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to store media: %w", err)
		}
		challenge.MediaURL = &url
	}

	s.repo.CreateChallenge(challenge)
	s.log.Infof("Challenge %d created: %s", challenge.ID, challenge.Title)
	return challenge, nil
}

// ListChallenges returns all challenges in creation order
func (s *Service) ListChallenges() []models.Challenge {
	return s.repo.ListChallenges()
}

// Feed returns every submission in storage order
func (s *Service) Feed() []models.Submission {
	return s.repo.ListSubmissions()
}

// UserSubmissions returns the submissions whose username equals userID
func (s *Service) UserSubmissions(userID string) []models.Submission {
	return s.repo.FindSubmissionsByUsername(userID)
}

// UserStats aggregates grade, reaction counts and top tags for userID
func (s *Service) UserStats(userID string) models.UserStats {
	submissions, challenges := s.repo.Snapshot()
	return stats.Compute(userID, submissions, challenges)
}
