package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/app"
	"github.com/diefthyntis/twoaut-auth-api/services"
	"github.com/diefthyntis/twoaut-auth-api/utils"
)

// SigninRequest is the request body for POST /api/auth/signin
type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the request body for POST /api/auth/signup
type SignupRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=20"`
	Email    string   `json:"email" validate:"required,email,max=50"`
	Password string   `json:"password" validate:"required,min=6,max=40"`
	Role     []string `json:"role,omitempty"`
}

// SigninResponse is returned on a successful signin
type SigninResponse struct {
	Token    string   `json:"token"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// SigninHandler authenticates a user and returns a bearer token. Unknown
// username and wrong password produce the same response, by contract.
func SigninHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SigninRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		if err := utils.ValidateStruct(req); err != nil {
			_ = utils.WriteBadRequest(w, err.Error(), utils.GetValidationFields(err))
			return
		}

		result, err := deps.Auth.SignIn(r.Context(), req.Username, req.Password)
		if err != nil {
			if services.IsUnauthorizedError(err) {
				_ = utils.WriteMessage(w, http.StatusUnauthorized, "Error: Invalid username or password")
				return
			}
			deps.Logger.Error("signin failed", zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		_ = utils.WriteJSON(w, http.StatusOK, SigninResponse{
			Token:    result.Token,
			ID:       result.ID,
			Username: result.Username,
			Email:    result.Email,
			Roles:    result.Roles,
		})
	}
}

// SignupHandler registers a new user
func SignupHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		if err := utils.ValidateStruct(req); err != nil {
			_ = utils.WriteBadRequest(w, err.Error(), utils.GetValidationFields(err))
			return
		}

		err := deps.Auth.SignUp(r.Context(), services.SignUpRequest{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			Roles:    req.Role,
		})
		if err != nil {
			switch {
			case services.IsConflictError(err):
				_ = utils.WriteMessage(w, http.StatusBadRequest, signupConflictMessage(err))
			default:
				deps.Logger.Error("signup failed", zap.Error(err))
				_ = utils.WriteInternalServerError(w, "")
			}
			return
		}

		_ = utils.WriteMessage(w, http.StatusOK, "User registered successfully!")
	}
}

func signupConflictMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		return "Error: Username is already taken!"
	case errors.Is(err, services.ErrDuplicateEmail):
		return "Error: Email is already in use!"
	default:
		return "Error: Registration conflict"
	}
}
