package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/devfolio/portfolio-api/internal/api"
	"github.com/devfolio/portfolio-api/internal/types"
	"github.com/devfolio/portfolio-api/internal/validate"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
	debug       bool
}

func NewHandlerImpl(authService AuthService, logger *slog.Logger, debug bool) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
		debug:       debug,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates a user account and returns it with a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterRequest true "Registration payload"
// @Success      201 {object} types.Response
// @Failure      422 {object} types.Response "Validation failed"
// @Failure      500 {object} types.Response
// @Router       /register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := validate.Errors{}
	errs.Required("name", req.Name)
	errs.MaxLen("name", req.Name, 255)
	errs.Required("email", req.Email)
	errs.Email("email", req.Email)
	errs.MaxLen("email", req.Email, 255)
	errs.Required("password", req.Password)
	errs.MinLen("password", req.Password, 6)
	if req.Password != "" && req.Password != req.PasswordConfirmation {
		errs.Add("password", "The password confirmation does not match.")
	}
	if errs.Any() {
		api.ValidationErrorResponse(w, r, errs)
		return
	}

	user, token, err := h.authService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			errs.Add("email", "The email has already been taken.")
			api.ValidationErrorResponse(w, r, errs)
			return
		}
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err), slog.String("email", req.Email))
		api.ServerErrorResponse(w, r, "Registration failed", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, "User registered successfully", types.AuthData{
		User:      user,
		Token:     token,
		TokenType: "bearer",
	})
}

// Login godoc
// @Summary      Login
// @Description  Verifies credentials and returns the user with a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} types.Response
// @Failure      401 {object} types.Response "Invalid credentials"
// @Failure      422 {object} types.Response "Validation failed"
// @Failure      500 {object} types.Response
// @Router       /login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := validate.Errors{}
	errs.Required("email", req.Email)
	errs.Email("email", req.Email)
	errs.Required("password", req.Password)
	errs.MinLen("password", req.Password, 6)
	if errs.Any() {
		api.ValidationErrorResponse(w, r, errs)
		return
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if errors.Is(err, ErrTokenCreation) {
			l.ErrorContext(ctx, "Token issuance failed", slog.Any("error", err))
			api.ServerErrorResponse(w, r, "Could not create token", err, h.debug)
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err), slog.String("email", req.Email))
		api.ServerErrorResponse(w, r, "Login failed", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Login successful. Welcome back!", types.AuthData{
		User:  user,
		Token: token,
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented bearer token.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Response
// @Failure      401 {object} types.Response
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "Claims not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(ctx, claims); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ServerErrorResponse(w, r, "Failed to logout", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Successfully logged out", nil)
}

// Me godoc
// @Summary      Current user
// @Description  Returns the user that owns the presented bearer token.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Response
// @Failure      401 {object} types.Response
// @Failure      404 {object} types.Response "User not found"
// @Security     BearerAuth
// @Router       /me [get]
func (h *HandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Me"))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to resolve user", slog.Any("error", err))
		api.ServerErrorResponse(w, r, "Failed to retrieve user", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "", map[string]interface{}{"user": user})
}
