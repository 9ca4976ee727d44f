package service

import "time"

// AccountInput is the bulk-ingest payload for one user of a referral dataset.
type AccountInput struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash,omitempty"`
	ReferralCode string     `json:"referralCode,omitempty"`
	ReferrerID   string     `json:"referrerId,omitempty"`
	ROIIncome    float64    `json:"roiIncome"`
	LevelIncome  float64    `json:"levelIncome"`
	TotalIncome  float64    `json:"totalIncome"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// RegisterInput is the sign-up payload. ReferralCode names the referrer and
// may be empty.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	ReferralCode string
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Email    string
	Password string
}
