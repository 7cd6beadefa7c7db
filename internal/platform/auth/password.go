package auth

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt work factor used for operator credential hashes.
const DefaultCost = 12

// HashPassword hashes the operator password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a candidate password against a bcrypt hash.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
