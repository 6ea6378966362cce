package apitest

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/skilltrack/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.me(w, r)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UserProfileUpdate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "profile", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID(r)]
	if req.Username != nil && *req.Username != u.Username {
		for _, other := range s.users {
			if other.Username == *req.Username {
				detail(w, r, http.StatusBadRequest, "Username already taken")
				return
			}
		}
		u.Username = *req.Username
	}
	if req.FullName != nil {
		u.FullName = req.FullName
	}

	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) updateEmail(w http.ResponseWriter, r *http.Request) {
	var req models.UserEmailUpdate
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID(r)]
	if bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		detail(w, r, http.StatusBadRequest, "Incorrect password")
		return
	}
	for _, other := range s.users {
		if other.ID != u.ID && strings.EqualFold(other.Email, req.Email) {
			detail(w, r, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u.Email = req.Email
	u.IsVerified = false

	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	logs := s.userLogs(uid)
	skills := s.userSkills(uid)
	resources := s.userResources(uid)

	d := models.UserDashboard{
		Profile:           s.users[uid].User,
		TotalSkills:       len(skills),
		TotalProgressLogs: len(logs),
		TotalLearningTime: sumBetween(logs, "", "9999-12-31"),
		CurrentStreak:     currentStreak(logs, dayOnly(s.now())),
		TotalResources:    len(resources),
	}
	for _, sk := range skills {
		if sk.Status == models.StatusActive {
			d.ActiveSkills++
		}
	}
	for _, res := range resources {
		if res.IsCompleted {
			d.CompletedResources++
		}
	}

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) quickStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	logs := s.userLogs(uid)
	skills := s.userSkills(uid)
	today := dayOnly(s.now())
	monday, _ := weekBounds(today)

	st := models.UserQuickStats{
		TotalSkills:       len(skills),
		TotalLearningTime: sumBetween(logs, "", "9999-12-31"),
		CurrentStreak:     currentStreak(logs, today),
		TodayTime:         sumBetween(logs, s.today(), s.today()),
		ThisWeekTime:      sumBetween(logs, monday.Format(models.DateLayout), s.today()),
	}
	for _, sk := range skills {
		if sk.Status == models.StatusActive {
			st.ActiveSkills++
		}
	}

	writeJSON(w, http.StatusOK, st)
}

// deactivate ждёт пароль только в query, тело игнорируется.
func (s *Server) deactivate(w http.ResponseWriter, r *http.Request) {
	password := r.URL.Query().Get("password")
	if password == "" {
		missingQuery(w, "password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	u := s.users[uid]
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		detail(w, r, http.StatusBadRequest, "Incorrect password")
		return
	}
	u.IsActive = false
	for token, owner := range s.refresh {
		if owner == uid {
			delete(s.refresh, token)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
