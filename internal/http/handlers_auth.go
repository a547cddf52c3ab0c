package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"tripledger/internal/auth"
)

const sessionCookie = "tripledger_session"

// requireAuth verifies the session cookie and stores the username in the
// request context. Unauthenticated page requests redirect to the login
// form; partial and API requests get a plain 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			s.denyUnauthenticated(w, r)
			return
		}

		username, err := s.auth.Verify(cookie.Value)
		if err != nil {
			slog.WarnContext(r.Context(), "Session token rejected", "error", err)
			s.clearSessionCookie(w)
			s.denyUnauthenticated(w, r)
			return
		}

		ctx := withUsername(r.Context(), username)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") != "" || r.URL.Path == "/locations" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderAuthPage(w, r, "login.html", "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")

		token, err := s.auth.Login(r.Context(), username, password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			s.renderAuthPage(w, r, "login.html", "Invalid username or password")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Login failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			s.renderAuthPage(w, r, "login.html", "Something went wrong, try again")
			return
		}

		s.setSessionCookie(w, token)
		slog.InfoContext(r.Context(), "User logged in", "username", username)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderAuthPage(w, r, "register.html", "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")

		if _, err := s.auth.Register(r.Context(), username, password); err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				w.WriteHeader(http.StatusConflict)
				s.renderAuthPage(w, r, "register.html", "That username is already taken")
				return
			}
			slog.WarnContext(r.Context(), "Registration rejected", "username", username, "error", err)
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.renderAuthPage(w, r, "register.html", err.Error())
			return
		}

		token, err := s.auth.Login(r.Context(), username, password)
		if err != nil {
			slog.ErrorContext(r.Context(), "Post-registration login failed", "error", err)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		s.setSessionCookie(w, token)
		slog.InfoContext(r.Context(), "User registered", "username", username)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) renderAuthPage(w http.ResponseWriter, r *http.Request, name, errMsg string) {
	if s.templates == nil {
		_, _ = w.Write([]byte(`<p>` + template.HTMLEscapeString(errMsg) + `</p>`))
		return
	}
	data := struct{ Error string }{Error: errMsg}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}
