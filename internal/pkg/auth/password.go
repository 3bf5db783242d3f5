package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost used for stored passwords
const BcryptCost = 12

// PasswordHasher turns a plain password into a stored hash
type PasswordHasher func(password string) (string, error)

// HashPassword hashes with BcryptCost
func HashPassword(password string) (string, error) {
	return hashWithCost(password, BcryptCost)
}

// NewHasher returns a hasher with a custom cost, used by tests with bcrypt.MinCost
func NewHasher(cost int) PasswordHasher {
	return func(password string) (string, error) {
		return hashWithCost(password, cost)
	}
}

func hashWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a plain password with its stored hash
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
