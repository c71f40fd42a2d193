package httpadapter

import (
	"net/http"
	"strings"
)

func (rt *Router) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

// login sends the browser to the external login page. Only relative return
// targets are forwarded so the endpoint cannot be used as an open redirect.
func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		returnTo = ""
	}
	http.Redirect(w, r, rt.sessions.LoginURL(returnTo), http.StatusFound)
}

func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.Logout(r.Context(), rt.sessionToken(r)); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.sessionCookie != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     rt.sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.WriteHeader(http.StatusNoContent)
}
