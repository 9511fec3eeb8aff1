package handlers

import (
	"net/http"

	"github.com/diefthyntis/twoaut-auth-api/app"
	"github.com/diefthyntis/twoaut-auth-api/utils"
)

// Demo content tiers. Each one sits behind a different guard so the route
// table exercises anonymous, authenticated, moderator, and admin access.

// PublicContentHandler serves content that requires no authentication
func PublicContentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMessage(w, http.StatusOK, "Public Content.")
	}
}

// UserContentHandler serves content for any authenticated user
func UserContentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMessage(w, http.StatusOK, "User Content.")
	}
}

// ModeratorContentHandler serves content for moderators and admins
func ModeratorContentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMessage(w, http.StatusOK, "Moderator Board.")
	}
}

// AdminContentHandler serves content for admins only
func AdminContentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMessage(w, http.StatusOK, "Admin Board.")
	}
}
