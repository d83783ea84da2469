package auth

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is bcrypt's input ceiling. Longer passwords are rejected instead of being
// truncated, so two passwords sharing a 72 byte prefix never hash alike.
const MaxPasswordBytes = 72

func HashPassword(plain string, cost int) ([]byte, error) {
	if len(plain) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(plain), cost)
}

// VerifyPassword relies on bcrypt's constant time comparison.
func VerifyPassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
