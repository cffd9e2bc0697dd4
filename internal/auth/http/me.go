package http

import (
	"net/http"
	"time"

	"github.com/devcrm/auth-service/pkg/httpx"
)

type meResponse struct {
	User meUser `json:"user"`
	Org  *meOrg `json:"org,omitempty"`
}

type meUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	EmailVerified bool       `json:"emailVerified"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type meOrg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Plan string `json:"plan"`
}

// HandleMe returns the authenticated user's profile and default org.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	user, org, err := h.AuthService.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := meResponse{User: meUser{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.Verified(),
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}}
	if org.ID != "" {
		resp.Org = &meOrg{ID: org.ID, Name: org.Name, Plan: org.Plan}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
