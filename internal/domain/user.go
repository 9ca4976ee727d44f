package domain

import "time"

// ReferralUser is one member of a referral network as reported by the referral
// service. The core treats it as immutable input.
type ReferralUser struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	ROIIncome   float64 `json:"roiIncome"`
	LevelIncome float64 `json:"levelIncome"`
	TotalIncome float64 `json:"totalIncome"`
}

// Account is the stored identity behind a ReferralUser.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	ReferralCode string
	ReferrerID   string
	ROIIncome    float64
	LevelIncome  float64
	TotalIncome  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReferralUser projects the account onto the network payload shape.
func (a Account) ReferralUser() ReferralUser {
	return ReferralUser{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		ROIIncome:   a.ROIIncome,
		LevelIncome: a.LevelIncome,
		TotalIncome: a.TotalIncome,
	}
}
