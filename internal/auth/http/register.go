package http

import (
	"net/http"
	"strings"

	"github.com/devcrm/auth-service/pkg/httpx"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	OrgName  string `json:"orgName"`
}

type registerResponse struct {
	UserID          string `json:"userId"`
	OrgID           string `json:"orgId"`
	VerifyEmailSent bool   `json:"verifyEmailSent"`
}

// HandleRegister creates an account, its default organization and queues the
// verification email. No tokens are issued until the email is verified.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}

	if missing := requireFields(map[string]string{
		"email":    req.Email,
		"name":     req.Name,
		"password": req.Password,
		"orgName":  req.OrgName,
	}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeBadRequest(w, r, "invalid email address", map[string]string{"field": "email"})
		return
	}

	res, err := h.AuthService.Register(r.Context(), req.Email, req.Name, req.Password, req.OrgName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, registerResponse{
		UserID:          res.UserID,
		OrgID:           res.OrgID,
		VerifyEmailSent: true,
	})
}

// requireFields returns the names of empty fields in a stable order.
func requireFields(fields map[string]string) []string {
	order := []string{"email", "name", "password", "orgName", "token", "newPassword", "refreshToken"}
	var missing []string
	for _, name := range order {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
