package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatterhq/chatter/modules/user"
	"github.com/chatterhq/chatter/pkg/apierr"
	"github.com/chatterhq/chatter/pkg/clientip"
	"github.com/chatterhq/chatter/pkg/jwt"
	"github.com/chatterhq/chatter/pkg/logger"
	"github.com/chatterhq/chatter/pkg/sanitizer"
	"github.com/chatterhq/chatter/pkg/validator"
)

// Handler serves the auth HTTP surface.
type Handler struct {
	service *Service
	cookies SessionCookies
	logger  *slog.Logger
}

func NewHandler(service *Service, cookies SessionCookies, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		service: service,
		cookies: cookies,
		logger:  log.With(logger.Component("auth_handler")),
	}
}

// Register mounts the auth routes. The current-user route is guarded; the
// rest are public, including signout which only clears the cookie.
func (h *Handler) Register(r chi.Router, verifier *jwt.Service) {
	r.Post("/signup", h.signUp)
	r.Post("/signin", h.signIn)
	r.Get("/signout", h.signOut)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password/{token}", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(VerifyToken(verifier, h.logger))
		r.Use(RequireAuth(h.logger))
		r.Get("/get-me", h.getMe)
	})
}

type signUpRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AvatarColor string `json:"avatarColor"`
	AvatarImage string `json:"avatarImage"`
}

func (req *signUpRequest) sanitizeAndValidate() error {
	req.Username = sanitizer.Trim(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	return validator.Apply(
		validator.Required("username", req.Username),
		validator.LengthBetween("username", req.Username, 4, 8),
		validator.Required("password", req.Password),
		validator.LengthBetween("password", req.Password, 4, 8),
		validator.Required("email", req.Email),
		validator.ValidEmail("email", req.Email),
		validator.Required("avatarColor", req.AvatarColor),
		validator.Required("avatarImage", req.AvatarImage),
	)
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}
	if err := req.sanitizeAndValidate(); err != nil {
		apierr.WriteJSON(w, r, h.logger, apierr.BadRequest(err.Error()))
		return
	}

	result, err := h.service.SignUp(r.Context(), SignUpParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		AvatarColor: req.AvatarColor,
		AvatarImage: req.AvatarImage,
	})
	if err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}

	h.cookies.Set(w, result.Token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    result.Record,
		"token":   result.Token,
	})
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *signInRequest) sanitizeAndValidate() error {
	req.Username = sanitizer.Trim(req.Username)
	return validator.Apply(
		validator.Required("username", req.Username),
		validator.LengthBetween("username", req.Username, 4, 8),
		validator.Required("password", req.Password),
		validator.LengthBetween("password", req.Password, 4, 8),
	)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}
	if err := req.sanitizeAndValidate(); err != nil {
		apierr.WriteJSON(w, r, h.logger, apierr.BadRequest(err.Error()))
		return
	}

	result, err := h.service.SignIn(r.Context(), SignInParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}

	h.cookies.Set(w, result.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User login successfully",
		"user":    result.Profile,
		"token":   result.Token,
	})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User logout successfully",
		"user":    map[string]any{},
		"token":   "",
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := validator.Apply(
		validator.Required("email", req.Email),
		validator.ValidEmail("email", req.Email),
	); err != nil {
		apierr.WriteJSON(w, r, h.logger, apierr.BadRequest(err.Error()))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Forgot Password Email Sent"})
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}
	if err := validator.Apply(
		validator.Required("password", req.Password),
		validator.LengthBetween("password", req.Password, 4, 8),
		validator.Required("confirmPassword", req.ConfirmPassword),
		validator.Matches("confirmPassword", req.ConfirmPassword, req.Password),
	); err != nil {
		apierr.WriteJSON(w, r, h.logger, apierr.BadRequest(err.Error()))
		return
	}

	token := chi.URLParam(r, "token")
	if err := h.service.ResetPassword(r.Context(), token, req.Password, req.ConfirmPassword, clientip.GetIP(r)); err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password successfully updated"})
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.GetClaims[Claims](r.Context())
	if !ok {
		apierr.WriteJSON(w, r, h.logger, apierr.Unauthorized("Authentication is required to access this route."))
		return
	}

	profile, found, err := h.service.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		apierr.WriteJSON(w, r, h.logger, err)
		return
	}

	var (
		token string
		usr   *user.Profile
	)
	if found {
		token, _ = jwt.GetToken(r.Context())
		usr = &profile
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"isUser": found,
		"user":   usr,
	})
}

// NotFoundHandler is the JSON catch-all for unknown routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": r.URL.Path + " not found",
		})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.BadRequest("Invalid request payload").WithCause(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
