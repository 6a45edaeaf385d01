package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bizportal/internal/domain"
	"bizportal/internal/middleware"
	"bizportal/internal/sqlinline"
)

type signupRequest struct {
	BusinessName string `json:"businessName" validate:"required"`
	OwnerName    string `json:"ownerName" validate:"required"`
	Industry     string `json:"industry" validate:"required"`
	ContactInfo  string `json:"contactInfo" validate:"required"`
	GstOrPan     string `json:"gstOrPan"`
	City         string `json:"city"`
	Website      string `json:"website"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	CaptchaToken string `json:"captchaToken"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "All fields required")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "All fields required")
		return
	}

	if a.Captcha.Enabled() {
		if err := a.Captcha.Verify(r.Context(), req.CaptchaToken, remoteIP(r)); err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				a.error(w, http.StatusUnauthorized, "Captcha verification failed")
				return
			}
			a.fail(w, err, "Captcha verification failed")
			return
		}
	}

	// Pre-check keeps the common case friendly; the unique index still
	// backstops concurrent signups.
	var existingID, existingEmail, existingHash, existingRole string
	err := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByEmail, req.Email).
		Scan(&existingID, &existingEmail, &existingHash, &existingRole)
	if err == nil {
		a.error(w, http.StatusConflict, "Email already exists")
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		a.fail(w, err, "Failed to register user")
		return
	}

	hash, err := domain.HashPassword(req.Password)
	if err != nil {
		a.fail(w, err, "Failed to register user")
		return
	}

	var id string
	var role domain.UserRole
	var createdAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertUser,
		req.BusinessName, req.OwnerName, req.Industry, req.ContactInfo,
		req.GstOrPan, req.City, req.Website, req.Email, hash,
	)
	if err := row.Scan(&id, &role, &createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			a.error(w, http.StatusConflict, "Email already exists")
			return
		}
		a.fail(w, err, "Failed to register user")
		return
	}

	token, err := middleware.SignToken(a.JWTSecret, id, a.TokenTTL)
	if err != nil {
		a.fail(w, err, "Failed to register user")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user": map[string]any{
			"id":           id,
			"businessName": req.BusinessName,
			"ownerName":    req.OwnerName,
			"email":        req.Email,
			"role":         role,
			"createdAt":    createdAt,
		},
	})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var usr domain.User
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByEmail, req.Email)
	if err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &usr.Role); err != nil {
		// Same response for unknown email and bad password.
		a.error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := usr.CheckPassword(req.Password); err != nil {
		a.error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := middleware.SignToken(a.JWTSecret, usr.ID, a.TokenTTL)
	if err != nil {
		a.fail(w, err, "Failed to log in")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    map[string]any{"id": usr.ID, "email": usr.Email, "role": usr.Role},
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
