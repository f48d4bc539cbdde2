package handlers

import (
	"context"
	"crypto/subtle"
	"embed"
	"html/template"
	"log"
	"net/http"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
)

//go:embed templates/sign_in.html
var templateFS embed.FS

var signInTemplate = template.Must(template.ParseFS(templateFS, "templates/sign_in.html"))

const (
	signInPath      = "/sign-in"
	authReceiverURI = "/auth-receiver"
	csrfCookieName  = "g_csrf_token"
)

type signInService interface {
	SignIn(ctx context.Context, credential string) (models.UserClaims, error)
}

type AuthHandler struct {
	auth     signInService
	sessions sessionSaver
	clientID string
}

func NewAuthHandler(auth signInService, sessions sessionSaver, clientID string) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, clientID: clientID}
}

type signInPage struct {
	ClientID string
	LoginURI string
	Name     string
	Email    string
}

func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	page := signInPage{
		ClientID: h.clientID,
		LoginURI: absoluteURL(r, authReceiverURI),
	}
	if sess := middleware.GetSession(r.Context()); sess != nil {
		if claims, ok := sess.User(); ok {
			page.Name = claims.Name()
			page.Email = claims.Email()
			if page.Name == "" {
				page.Name = claims.Email()
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := signInTemplate.Execute(w, page); err != nil {
		log.Printf("sign-in page render failed: %v", err)
	}
}

// Receive is the identity provider's redirect target. An invalid credential
// is answered with 403 and leaves the session untouched.
func (h *AuthHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid form body", r))
		return
	}

	if !csrfTokenMatches(r) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "CSRF token mismatch", r))
		return
	}

	claims, err := h.auth.SignIn(r.Context(), r.PostForm.Get("credential"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Session unavailable", r))
		return
	}

	sess.SetUser(claims)
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		log.Printf("session save failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save session", r))
		return
	}

	http.Redirect(w, r, signInPath, http.StatusFound)
}

// SignOut forgets the signed-in user, if any, and always redirects.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		if _, ok := sess.User(); ok {
			sess.ClearUser()
			if err := h.sessions.Save(r.Context(), w, sess); err != nil {
				log.Printf("session save failed: %v", err)
			}
		}
	}

	http.Redirect(w, r, signInPath, http.StatusFound)
}

// csrfTokenMatches applies Google's double-submit check: the g_csrf_token
// form field and cookie must both be present and equal.
func csrfTokenMatches(r *http.Request) bool {
	formToken := r.PostForm.Get(csrfCookieName)
	if formToken == "" {
		return false
	}
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(formToken)) == 1
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
