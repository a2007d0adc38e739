package auth

import "golang.org/x/crypto/bcrypt"

const (
	// PasswordCost is the bcrypt work factor used for every new hash.
	PasswordCost = 12

	// bcrypt ignores (or, in newer versions, rejects) input past 72 bytes.
	maxPasswordBytes = 72
)

// HashPassword returns the bcrypt encoding of password. Only the first 72
// bytes of the UTF-8 encoding take part in the hash.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncatePassword(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is
// treated as a mismatch.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password)) == nil
}

// truncatePassword cuts on bytes, not runes, so hashing and verification
// always see the same prefix.
func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
