// Package hash wraps the one-way credential hash shared by account
// passwords and one-time codes. Codes are never stored or compared in
// plaintext; they go through the same salted bcrypt digest as passwords.
package hash

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt digest of the secret.
func Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether secret matches the stored digest.
func Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
