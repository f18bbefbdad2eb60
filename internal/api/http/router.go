package http

import (
	"net/http"
	"time"

	"gatehouse-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Auth   *AuthHandler
	Apps   *PreApplicationHandler
	Codes  *InviteCodeHandler
	Query  *QueryHandler
	Tokens security.TokenManager
	Redis  *redis.Client
}

// Anonymous lookups are cheap but enumerable, so they get a per-IP cap.
const (
	queryRateLimit  = 30
	queryRateWindow = time.Minute
)

func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public.
	api.HandleFunc("/auth/login", deps.Auth.Login).Methods(http.MethodPost)

	rateLimited := RateLimit(deps.Redis, "query", queryRateLimit, queryRateWindow)
	api.Handle("/query/{token}", rateLimited(http.HandlerFunc(deps.Query.Resolve))).Methods(http.MethodGet)

	// Authenticated members.
	authed := api.NewRoute().Subrouter()
	authed.Use(Authenticate(deps.Tokens))
	authed.HandleFunc("/pre-applications", deps.Apps.Submit).Methods(http.MethodPost)
	authed.HandleFunc("/pre-applications/mine", deps.Apps.GetOwn).Methods(http.MethodGet)
	authed.HandleFunc("/pre-applications/{id:[0-9]+}/resubmit", deps.Apps.Resubmit).Methods(http.MethodPost)

	// Reviewer and admin staff.
	staff := api.PathPrefix("/staff").Subrouter()
	staff.Use(Authenticate(deps.Tokens))
	staff.Use(RequireReviewer)
	staff.HandleFunc("/pre-applications", deps.Apps.List).Methods(http.MethodGet)
	staff.HandleFunc("/pre-applications/{id:[0-9]+}", deps.Apps.Get).Methods(http.MethodGet)
	staff.HandleFunc("/pre-applications/{id:[0-9]+}/decide", deps.Apps.Decide).Methods(http.MethodPost)
	staff.HandleFunc("/pre-applications/{id:[0-9]+}/code-sent", deps.Apps.MarkCodeSent).Methods(http.MethodPost)
	staff.HandleFunc("/pre-applications/archive", deps.Apps.Archive).Methods(http.MethodPost)

	// Admin only.
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(Authenticate(deps.Tokens))
	admin.Use(RequireAdmin)
	admin.HandleFunc("/users/bulk", deps.Auth.BulkCreateUsers).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes", deps.Codes.Create).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes", deps.Codes.List).Methods(http.MethodGet)
	admin.HandleFunc("/invite-codes/import", deps.Codes.Import).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes/check", deps.Codes.BatchCheck).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes/bulk-delete", deps.Codes.BulkSoftDelete).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes/{id:[0-9]+}", deps.Codes.Get).Methods(http.MethodGet)
	admin.HandleFunc("/invite-codes/{id:[0-9]+}", deps.Codes.SoftDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/invite-codes/{id:[0-9]+}/mark-used", deps.Codes.MarkUsed).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes/{id:[0-9]+}/invalidate", deps.Codes.Invalidate).Methods(http.MethodPost)
	admin.HandleFunc("/invite-codes/{id:[0-9]+}/issue", deps.Codes.Issue).Methods(http.MethodPost)

	return r
}
