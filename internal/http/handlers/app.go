package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"bizportal/internal/captcha"
	"bizportal/internal/domain"
	"bizportal/internal/infra"
	"bizportal/internal/middleware"
	"bizportal/internal/storage"
)

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	SQL       infra.SQLExecutor
	Logger    zerolog.Logger
	JWTSecret string
	TokenTTL  time.Duration
	Store     storage.ObjectStore
	Captcha   *captcha.Verifier
	Validate  *validator.Validate
}

func NewApp(sql infra.SQLExecutor, logger zerolog.Logger, cfg *infra.Config, store storage.ObjectStore, verifier *captcha.Verifier) *App {
	return &App{
		SQL:       sql,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Store:     store,
		Captcha:   verifier,
		Validate:  validator.New(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "message": message})
}

// fail maps domain sentinel errors onto the response taxonomy; anything
// unrecognized becomes a 500 with the fallback message.
func (a *App) fail(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, fallback)
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, fallback)
	default:
		a.Logger.Error().Err(err).Msg(fallback)
		a.error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (a *App) currentUser(r *http.Request) (middleware.AuthUser, bool) {
	return middleware.CurrentUser(r.Context())
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
