package userdata

// OnboardingProgress is the resumable onboarding state for a single user.
// It lives in Redis as JSON, keyed by user id, not in Postgres.
type OnboardingProgress struct {
	UserId      int64             `json:"user_id,omitempty"`
	CurrentStep string            `json:"current_step"`
	Selections  map[string]string `json:"selections"`
}
