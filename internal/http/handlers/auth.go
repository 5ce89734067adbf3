package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/go-webapp-starter/internal/errors"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/security/csrf"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse — ответ register/login: bearer-токен, профиль и
// header-часть CSRF-пары (cookie-часть уезжает в Set-Cookie).
type authResponse struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
}

type logoutResponse struct {
	Message string `json:"message"`
}

// Register создаёт пользователя и открывает сессию: access-токен в теле,
// CSRF-cookie в Set-Cookie.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	user, token, err := h.Service.RegisterUser(r.Context(), in.Email, in.Name, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	csrfToken, csrfCookie, err := h.CSRF.Issue(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setCSRFCookie(w, csrfCookie)
	writeJSON(w, http.StatusCreated, authResponse{
		Token:     token,
		User:      user,
		CSRFToken: csrfToken,
	})
}

// Login аутентифицирует по email+паролю.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	user, token, err := h.Service.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	csrfToken, csrfCookie, err := h.CSRF.Issue(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setCSRFCookie(w, csrfCookie)
	writeJSON(w, http.StatusOK, authResponse{
		Token:     token,
		User:      user,
		CSRFToken: csrfToken,
	})
}

// Logout отзывает CSRF-запись и гасит cookie. Bearer-токен при этом
// продолжает жить до истечения — серверного отзыва access-токенов нет,
// это осознанный компромисс простоты.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(csrf.CookieName); err == nil {
		if err := h.CSRF.Revoke(r.Context(), c.Value); err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
	}

	h.clearCSRFCookie(w)
	writeJSON(w, http.StatusOK, logoutResponse{Message: "logged out"})
}

// setCSRFCookie — контракт cookie:
// csrf-token=<v>; HttpOnly; SameSite=Strict; Path=/; Max-Age=<ttl>.
func (h *Handlers) setCSRFCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrf.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.CSRF.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handlers) clearCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrf.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // сериализуется как Max-Age=0.
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
