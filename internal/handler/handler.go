package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Dan9191/challenge-service/internal/integrations/rss"
	"github.com/Dan9191/challenge-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc       *service.Service
	log       *logrus.Logger
	maxMemory int64
}

func NewHandler(svc *service.Service, log *logrus.Logger, maxUploadMemory int64) *Handler {
	return &Handler{svc: svc, log: log, maxMemory: maxUploadMemory}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Register(req.Username, req.Email, req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful", Token: token})
}

// Feed returns every submission
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Feed())
}

// CreateChallenge handles multipart challenge creation with an optional media file
func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.writeError(w, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var media *service.Media
	if r.MultipartForm != nil {
		file, header, err := r.FormFile("media")
		switch {
		case err == nil:
			defer file.Close()
			media = &service.Media{Filename: header.Filename, Content: file}
		case !errors.Is(err, http.ErrMissingFile):
			h.writeError(w, err)
			return
		}
	}

	challenge, err := h.svc.CreateChallenge(r.FormValue("title"), r.FormValue("description"), r.FormValue("tags"), media)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

// ListChallenges returns all challenges
func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListChallenges())
}

// ChallengesRSS renders the challenges as an RSS feed
func (h *Handler) ChallengesRSS(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	body, err := rss.Render(rss.Channel{
		Title:       "Challenges",
		Link:        scheme + "://" + r.Host,
		Description: "Latest challenges",
	}, h.svc.ListChallenges())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", rss.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// UserSubmissions returns the submissions of a single user
func (h *Handler) UserSubmissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.UserSubmissions(mux.Vars(r)["userId"]))
}

// UserStats returns the grade and activity summary of a single user
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.UserStats(mux.Vars(r)["userId"]))
}

// decode reads a JSON body into v. An empty body leaves v zeroed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debugf("Invalid request body on %s: %v", r.URL.Path, err)
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return false
	}
	return true
}

// writeError maps service errors onto status codes
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		verr *service.ValidationError
		aerr *service.AuthError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: verr.Message})
	case errors.As(err, &aerr):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: aerr.Message})
	default:
		h.log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
