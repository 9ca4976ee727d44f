package generator

// Config drives the synthetic referral network generator.
type Config struct {
	NumUsers int
	// Roots is the number of users without a referrer.
	Roots int
	// MaxDepth bounds the number of referral levels below a root.
	MaxDepth int
	// MaxFanout bounds the direct recruits of any one user.
	MaxFanout int
	// MaxIncome bounds each of the ROI and level incomes per user.
	MaxIncome float64
	// PasswordHash is stored on every generated account when set.
	PasswordHash string
	Seed         int64
}

// DefaultConfig returns baseline settings for a demo-sized network.
func DefaultConfig() Config {
	return Config{
		NumUsers:  2000,
		Roots:     5,
		MaxDepth:  12,
		MaxFanout: 8,
		MaxIncome: 500,
		Seed:      42,
	}
}
