package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/dmitrijs2005/astroadvisor/internal/server/advice"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
	"github.com/dmitrijs2005/astroadvisor/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// ---- views ----

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"username"`
	BirthDate string    `json:"birth_date"`
	BirthTime string    `json:"birth_time,omitempty"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type readingView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
	BirthTime string    `json:"birth_time,omitempty"`
	Location  string    `json:"location"`
	Advice    string    `json:"advice"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		UserName:  u.UserName,
		BirthDate: u.BirthDate,
		BirthTime: u.BirthTime,
		Location:  u.Location,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toReadingView(r *models.Reading) readingView {
	return readingView{
		ID:        r.ID,
		Name:      r.Name,
		BirthDate: r.BirthDate,
		BirthTime: r.BirthTime,
		Location:  r.Location,
		Advice:    r.Advice,
		CreatedAt: r.CreatedAt,
	}
}

// ---- request bodies ----

type registerRequest struct {
	Email     string `json:"email"`
	UserName  string `json:"username"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"`
	BirthTime string `json:"birth_time"`
	Location  string `json:"location"`
}

type userUpdateRequest struct {
	UserName  *string `json:"username"`
	BirthDate *string `json:"birth_date"`
	BirthTime *string `json:"birth_time"`
	Location  *string `json:"location"`
}

type readingRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	BirthTime string `json:"birth_time"`
	Location  string `json:"location"`
}

func (rr readingRequest) toInput() advice.Input {
	return advice.Input{
		Name:      rr.Name,
		BirthDate: rr.BirthDate,
		BirthTime: rr.BirthTime,
		Location:  rr.Location,
	}
}

// ---- JSON helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// serviceError maps a service-layer error onto a response. Not-found and
// not-owned are indistinguishable on the wire.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		errorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		errorJSON(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, common.ErrorUnauthorized):
		errorJSON(w, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, common.ErrorNotFound):
		errorJSON(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrAdviceGeneration):
		s.logger.Error(r.Context(), "advice generation failed", "error", err.Error())
		errorJSON(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error(r.Context(), "request failed", "error", err.Error())
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ---- handlers ----

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Astro Advisor API"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterInput{
		Email:     in.Email,
		UserName:  in.UserName,
		Password:  in.Password,
		BirthDate: in.BirthDate,
		BirthTime: in.BirthTime,
		Location:  in.Location,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "email", user.Email)
	writeJSON(w, http.StatusOK, toUserView(user))
}

// handleToken implements the form-encoded bearer-token exchange: the
// "username" form field carries the email.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := s.users.Login(r.Context(), email, password)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleUpdateSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var in userUpdateRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	updated, err := s.users.Update(r.Context(), user.ID, models.UserUpdate{
		UserName:  in.UserName,
		BirthDate: in.BirthDate,
		BirthTime: in.BirthTime,
		Location:  in.Location,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(updated))
}

func (s *Server) handleDeleteSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := s.users.Delete(r.Context(), user.ID); err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user deleted", "id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (s *Server) handleGetAdvice(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var in readingRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	reading, err := s.readings.CreateForUser(r.Context(), user.ID, in.toInput())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReadingView(reading))
}

// handleQuickAdvice is deliberately unauthenticated: the resulting reading
// never gets an owner, even when the caller attaches a valid token.
func (s *Server) handleQuickAdvice(w http.ResponseWriter, r *http.Request) {
	var in readingRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	reading, err := s.readings.CreateQuick(r.Context(), in.toInput())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReadingView(reading))
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 10)

	list, err := s.readings.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	views := make([]readingView, 0, len(list))
	for _, reading := range list {
		views = append(views, toReadingView(reading))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	reading, err := s.readings.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReadingView(reading))
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
