package handlers

import (
	"net/http"

	"github.com/diefthyntis/twoaut-auth-api/app"
	"github.com/diefthyntis/twoaut-auth-api/middleware"
	"github.com/diefthyntis/twoaut-auth-api/utils"
)

// CurrentUserResponse is the response body for GET /api/users/me
type CurrentUserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// GetCurrentUserHandler echoes the authenticated principal
func GetCurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w)
			return
		}

		_ = utils.WriteJSON(w, http.StatusOK, CurrentUserResponse{
			ID:       principal.ID,
			Username: principal.Username,
			Email:    principal.Email,
			Roles:    principal.Roles,
		})
	}
}
