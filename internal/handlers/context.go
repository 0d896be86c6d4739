package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stanstork/pollroom-api/internal/authz"
)

// requireUser returns the authenticated user id or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := authz.UserIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return "", false
	}
	return uid, true
}

func pollIDFromRequest(r *http.Request) string {
	return mux.Vars(r)["pollID"]
}
