package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted bcrypt digest of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored digest.
// bcrypt's comparison is constant-time over the derived key.
func CheckPassword(hash string, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
