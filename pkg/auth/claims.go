package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	CustomerID string
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	CustomerID string `json:"customer_id"`
	jwt.RegisteredClaims
}

// Customer returns the customer identity, falling back to the subject claim
// for tokens minted by older issuers.
func (c *AccessTokenClaims) Customer() string {
	if c.CustomerID != "" {
		return c.CustomerID
	}
	return c.Subject
}
