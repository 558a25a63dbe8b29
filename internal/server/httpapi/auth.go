package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkravetz/sixtyfix/internal/common"
)

type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type signupResponse struct {
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	MailDelivered    bool   `json:"mail_delivered"`
	VerificationLink string `json:"verification_link,omitempty"`
}

// handleSignup handles POST /auth/signup. When verification mail could not
// be delivered the raw link is included in the response.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			fail(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrorAlreadyExists):
			fail(w, http.StatusConflict, "Username or email already taken")
		default:
			s.logger.Error(r.Context(), "signup failed", "error", err.Error())
			fail(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	resp := signupResponse{
		UserID:        res.User.ID,
		Username:      res.User.Username,
		Email:         res.User.Email,
		MailDelivered: res.MailDelivered,
	}
	if res.VerificationLink != "" && !res.MailDelivered {
		resp.VerificationLink = res.VerificationLink
	}

	ok(w, http.StatusCreated, "Account created", resp)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// handleLogin handles POST /auth/login. Login accepts a username or email.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailNotVerified):
			fail(w, http.StatusForbidden, "Please verify your email before logging in")
		case errors.Is(err, common.ErrorUnauthorized):
			fail(w, http.StatusUnauthorized, "Invalid login or password")
		default:
			s.logger.Error(r.Context(), "login failed", "error", err.Error())
			fail(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	ok(w, http.StatusOK, "Login successful", loginResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
	})
}

// handleVerifyEmail handles GET /auth/verify-email/{token}, the target of
// links sent by mail.
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := s.users.VerifyEmail(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			fail(w, http.StatusBadRequest, "Invalid or expired link")
		default:
			s.logger.Error(r.Context(), "email verification failed", "error", err.Error())
			fail(w, http.StatusInternalServerError, "Verification failed")
		}
		return
	}

	ok(w, http.StatusOK, "Email verified, you can log in now", nil)
}

type emailRequest struct {
	Email string `json:"email"`
}

// handleResendVerification handles POST /auth/resend-verification. The
// response carries no link and is the same whether or not the address
// exists; the caller is unauthenticated, so the token only ever travels by
// mail (or the server log when mail is unconfigured).
func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.users.ResendVerification(r.Context(), req.Email); err != nil {
		s.logger.Error(r.Context(), "resend verification failed", "error", err.Error())
		fail(w, http.StatusInternalServerError, "Request failed")
		return
	}

	ok(w, http.StatusOK, "If the account exists, a verification link was sent", nil)
}

// handleForgotPassword handles POST /auth/forgot-password with the same
// neutral, link-free response shape.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.users.ForgotPassword(r.Context(), req.Email); err != nil {
		s.logger.Error(r.Context(), "forgot password failed", "error", err.Error())
		fail(w, http.StatusInternalServerError, "Request failed")
		return
	}

	ok(w, http.StatusOK, "If the account exists, a reset link was sent", nil)
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// handleResetPassword handles POST /auth/reset-password/{token}.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.users.ResetPassword(r.Context(), token, req.Password, req.ConfirmPassword); err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			fail(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			fail(w, http.StatusBadRequest, "Invalid or expired link")
		default:
			s.logger.Error(r.Context(), "password reset failed", "error", err.Error())
			fail(w, http.StatusInternalServerError, "Reset failed")
		}
		return
	}

	ok(w, http.StatusOK, "Password updated, you can log in now", nil)
}

// handleMe handles GET /me for the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		fail(w, http.StatusNotFound, "Not found")
		return
	}
	ok(w, http.StatusOK, "", map[string]interface{}{
		"user_id":     user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"is_verified": user.IsVerified,
	})
}

// handleDeleteAccount handles DELETE /account. Items are removed by cascade.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteAccount(r.Context(), UserIDFromContext(r.Context())); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fail(w, http.StatusNotFound, "Not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Delete failed")
		return
	}
	ok(w, http.StatusOK, "Account deleted", nil)
}
