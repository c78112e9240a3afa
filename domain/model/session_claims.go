package model

import "github.com/golang-jwt/jwt"

// SessionClaims are carried by the companion session token handed to the browser.
type SessionClaims struct {
	Origin TokenOrigin `json:"origin"`
	jwt.StandardClaims
}
