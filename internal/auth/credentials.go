package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the single configured username/password pair accepted by
// /login. The password may be supplied either as a plain secret or as a
// bcrypt hash; exactly one is consulted.
type Credentials struct {
	username     string
	password     string
	passwordHash string
}

func NewCredentials(username, password, passwordHash string) *Credentials {
	return &Credentials{
		username:     username,
		password:     password,
		passwordHash: passwordHash,
	}
}

// Authenticate reports whether the supplied pair matches the configured one.
// It never returns an error; any mismatch is false.
func (c *Credentials) Authenticate(username, password string) bool {
	if c == nil || c.username == "" {
		return false
	}

	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	var passMatch bool
	if c.passwordHash != "" {
		passMatch = bcrypt.CompareHashAndPassword([]byte(c.passwordHash), []byte(password)) == nil
	} else {
		passMatch = subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) == 1
	}

	return userMatch && passMatch
}
