package middleware

import (
	"net/http"
	"strings"

	"far-fetched/internal/domain/preferences"
	"far-fetched/internal/ports/auth"

	"github.com/google/uuid"
)

// SessionCookie identifica la sesión del visitante (anónimo o no).
const SessionCookie = "ff_session"

// VisitorContext arma el contexto per-request del visitante:
//   - sesión: cookie existente o una nueva (uuid) con Set-Cookie.
//   - usuario: si verifier != nil y viene Bearer token => intenta Verify().
//     Si verifier == nil => modo dev: header X-Debug-User-ID setea el user.
//   - sin usuario el request sigue como anónimo; los handlers no exigen auth,
//     solo cambia dónde viven las preferencias.
func VisitorContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := sessionID(w, r)

			userID := ""
			if verifier == nil {
				// Dev mode: permitir inyectar user sin verifier
				userID = strings.TrimSpace(r.Header.Get("X-Debug-User-ID"))
			} else if token := bearerToken(r.Header.Get("Authorization")); token != "" {
				claims, err := verifier.Verify(r.Context(), token)
				if err == nil {
					// No cortamos en error para no acoplar: un token malo
					// degrada a visitante anónimo.
					userID = claims.UserID
				}
			}

			visitor := preferences.NewVisitor(sid, userID)
			ctx := preferences.WithVisitor(r.Context(), visitor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}

	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
