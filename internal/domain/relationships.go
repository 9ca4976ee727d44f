package domain

import "time"

// ReferralEdge links a referrer to a recruit they brought onto the platform.
type ReferralEdge struct {
	ReferrerID string
	RecruitID  string
	CreatedAt  time.Time
}

// ReferralRow is one flattened edge of a stored referral network, as read from
// the graph before it is nested into RawNode form.
type ReferralRow struct {
	ParentID string
	User     ReferralUser
}
