package domain

import "time"

// Session is returned by a successful login or registration.
type Session struct {
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	User         ReferralUser `json:"user"`
	ReferralCode string       `json:"referralCode"`
}
