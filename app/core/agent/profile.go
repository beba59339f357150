package agent

import (
	"encoding/json"
	"os"

	"daybrief/app/pkg/logger"
)

// Profile is the stored preference document: read-only defaults applied
// when the model omits budgets or preferences. Loaded once per request.
type Profile struct {
	UserRole               string  `json:"user_role"`
	DefaultGiftBudget      float64 `json:"default_gift_budget"`
	DefaultInterviewBudget float64 `json:"default_interview_budget"`
	PrimePreferred         bool    `json:"prime_preferred"`
}

func DefaultProfile() Profile {
	return Profile{
		UserRole:               "student",
		DefaultGiftBudget:      30,
		DefaultInterviewBudget: 25,
		PrimePreferred:         true,
	}
}

// LoadProfile reads the preference document at path. An absent or
// unreadable file yields the built-in defaults.
func LoadProfile(path string) Profile {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultProfile()
	}
	p := DefaultProfile()
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Error("profile at %s is malformed, using defaults: %v", path, err)
		return DefaultProfile()
	}
	return p
}
