package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresWithin reports whether the access token's exp claim falls inside the
// supplied window. The claim is read without signature verification; the
// provider remains the authority on token validity. Unparseable tokens are
// treated as expiring so the caller refreshes instead of failing later.
func ExpiresWithin(accessToken string, window time.Duration) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) <= window
}
