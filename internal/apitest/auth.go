package apitest

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/skilltrack/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "register", models.Describe(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		detail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			detail(w, r, http.StatusBadRequest, "Email already registered")
			return
		}
		if u.Username == req.Username {
			detail(w, r, http.StatusBadRequest, "Username already taken")
			return
		}
	}

	u := &user{
		User: models.User{
			ID:        s.nextID(),
			Email:     req.Email,
			Username:  req.Username,
			FullName:  req.FullName,
			IsActive:  true,
			CreatedAt: models.Timestamp{Time: s.now()},
		},
		hash: hash,
	}
	s.users[u.ID] = u

	pair, err := s.issuePair(u.ID)
	if err != nil {
		detail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{User: u.User, Tokens: pair, Message: "Registration successful"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var found *user
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			found = u
			break
		}
	}
	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(req.Password)) != nil {
		detail(w, r, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !found.IsActive {
		detail(w, r, http.StatusForbidden, "Account is inactive")
		return
	}

	pair, err := s.issuePair(found.ID)
	if err != nil {
		detail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{User: found.User, Tokens: pair, Message: "Authentication successful"})
}

// refreshTokens ротирует пару: предъявленный refresh-токен больше не действует.
func (s *Server) refreshTokens(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	claims, err := s.parse(req.RefreshToken)
	if err != nil {
		detail(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if claims.Type != "refresh" {
		detail(w, r, http.StatusUnauthorized, "Invalid token type")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid, ok := s.refresh[req.RefreshToken]
	if !ok {
		detail(w, r, http.StatusUnauthorized, "Token not found or expired")
		return
	}
	delete(s.refresh, req.RefreshToken)

	if u, ok := s.users[uid]; !ok || !u.IsActive {
		detail(w, r, http.StatusUnauthorized, "User not found or inactive")
		return
	}

	pair, err := s.issuePair(uid)
	if err != nil {
		detail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	if req.RefreshToken != "" {
		delete(s.refresh, req.RefreshToken)
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[userID(r)].User
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChangeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "new_password", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID(r)]
	if bcrypt.CompareHashAndPassword(u.hash, []byte(req.OldPassword)) != nil {
		detail(w, r, http.StatusBadRequest, "Incorrect password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		detail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	u.hash = hash

	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) verifyToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[userID(r)].User
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.VerifyTokenResponse{Valid: true, UserID: u.ID, Email: u.Email, Username: u.Username})
}
