package dto

import authdomain "mailbrief-backend/internal/auth/domain"

// AuthResponse is returned after a successful Google sign-in.
type AuthResponse struct {
	Token string           `json:"token"`
	User  *authdomain.User `json:"user"`
}

// UpdatePreferencesRequest carries partial preference updates; nil fields
// keep their current values.
type UpdatePreferencesRequest struct {
	SummaryEnabled       *bool   `json:"summary_enabled"`
	PreferredSummaryTime *string `json:"preferred_summary_time"`
	Timezone             *string `json:"timezone"`
	EmailNotification    *bool   `json:"email_notification"`
}
