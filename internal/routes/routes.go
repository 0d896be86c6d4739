package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stanstork/pollroom-api/internal/authz"
	"github.com/stanstork/pollroom-api/internal/handlers"
)

// NewRouter wires every HTTP endpoint. Everything under /api except
// registration and login requires a bearer token.
func NewRouter(health http.HandlerFunc, auth *handlers.AuthHandler, poll *handlers.PollHandler, issuer *authz.Issuer) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", health).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/register", auth.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/token", auth.Token).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authz.Authenticate(issuer))

	api.HandleFunc("/users/me", auth.Me).Methods(http.MethodGet)

	api.HandleFunc("/polls", poll.CreatePoll).Methods(http.MethodPost)
	api.HandleFunc("/polls", poll.ListPolls).Methods(http.MethodGet)
	api.HandleFunc("/polls/join", poll.JoinPoll).Methods(http.MethodPost)
	api.HandleFunc("/polls/{pollID}", poll.GetPoll).Methods(http.MethodGet)
	api.HandleFunc("/polls/{pollID}", poll.DeletePoll).Methods(http.MethodDelete)
	api.HandleFunc("/polls/{pollID}/votes", poll.CastVote).Methods(http.MethodPost)
	api.HandleFunc("/polls/{pollID}/membership", poll.LeavePoll).Methods(http.MethodDelete)
	api.HandleFunc("/polls/{pollID}/end", poll.EndPoll).Methods(http.MethodPatch)

	return router
}
