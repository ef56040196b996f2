package auth

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// prehashPrefix marks hashes that are bcrypt over the SHA-256 hex of the
// password. bcrypt only reads 72 bytes; the 64-byte digest fits any length.
const prehashPrefix = "sha256$"

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// HashPassword returns a salted bcrypt hash of password. Passwords of any
// length are accepted.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return prehashPrefix + string(b), nil
}

// LegacyMD5 is the unsalted hex MD5 scheme used by accounts created before
// bcrypt. It exists only to verify and migrate those stored hashes.
func LegacyMD5(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// isLegacyHash reports whether stored looks like a LegacyMD5 digest.
func isLegacyHash(stored string) bool {
	if len(stored) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}

// VerifyPassword checks password against a stored hash. needsUpgrade is
// true when the match was against a legacy digest or a bcrypt hash without
// the SHA-256 prehash.
func VerifyPassword(stored, password string) (ok, needsUpgrade bool) {
	switch {
	case isLegacyHash(stored):
		ok = subtle.ConstantTimeCompare([]byte(stored), []byte(LegacyMD5(password))) == 1
		return ok, ok
	case strings.HasPrefix(stored, prehashPrefix):
		hash := strings.TrimPrefix(stored, prehashPrefix)
		return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil, false
	default:
		ok = bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
		return ok, ok
	}
}
