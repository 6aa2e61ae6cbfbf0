package http

import (
	"net/http"

	"incometracker/internal/core"
	"incometracker/internal/export"
	"incometracker/internal/services"
)

type userRecord struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func newUserRecord(u core.User) userRecord {
	return userRecord{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: export.FormatTimestamp(u.CreatedAt)}
}

type userResponse struct {
	Message string     `json:"message,omitempty"`
	User    userRecord `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	u, err := s.auth.Register(r.Context(), services.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Message: s.message(r, "auth.register_success"), User: newUserRecord(u)})
}

// loginRequest accepts a username or an email in Username.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	u, sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	writeJSON(w, http.StatusOK, userResponse{Message: s.message(r, "auth.login_success"), User: newUserRecord(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), sessionTokenFrom(r.Context())); err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.clearSessionCookie(w)
	s.writeMessage(w, r, http.StatusOK, "auth.logout_success")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.CurrentUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: newUserRecord(u)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := s.auth.ChangePassword(r.Context(), userIDFrom(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeMessage(w, r, http.StatusOK, "auth.password_changed")
}
