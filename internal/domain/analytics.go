package domain

// TeamSummary captures roll-up figures for one direct referral of the caller.
type TeamSummary struct {
	RootID        string  `json:"rootId"`
	RootName      string  `json:"rootName"`
	TeamSize      int     `json:"teamSize"`
	TeamIncome    float64 `json:"teamIncome"`
	MaxDepth      int     `json:"maxDepth"`
	DirectRecruit int     `json:"directRecruits"`
}

// Dashboard is the caller's own income overview plus their network totals.
type Dashboard struct {
	User         ReferralUser  `json:"user"`
	ReferralCode string        `json:"referralCode"`
	TeamSize     int           `json:"teamSize"`
	TeamIncome   float64       `json:"teamIncome"`
	Teams        []TeamSummary `json:"teams"`
	Diagnostics  int           `json:"diagnostics"`
}
