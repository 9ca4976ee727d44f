package service

import "fmt"

const referralCodeLength = 8

// CodeGenerator derives the referral code handed to a new account.
type CodeGenerator interface {
	Generate(userID string, attempt int) string
}

// DefaultCodeGenerator hashes the user ID (and retry attempt) into an
// eight-character code.
type DefaultCodeGenerator struct{}

func (DefaultCodeGenerator) Generate(userID string, attempt int) string {
	seed := userID
	if attempt > 0 {
		seed = fmt.Sprintf("%s#%d", userID, attempt)
	}
	return hashValue(seed)[:referralCodeLength]
}
