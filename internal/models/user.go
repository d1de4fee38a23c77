package models

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognised by the system.
const (
	RoleClient  = "client"
	RoleOfficer = "officer"
	RoleAdmin   = "admin"
)

// User представляє зареєстрованого учасника системи.
// Рівно один запис на номер посвідчення (IdentityNumber).
type User struct {
	ID             string `gorm:"primaryKey" json:"id"`
	Name           string `json:"name"`
	IdentityNumber string `gorm:"uniqueIndex" json:"identityNumber"`
	Role           string `json:"role"`
	SigninKeyHash  string `json:"signinKeyHash"`
	WalletAddress  string `json:"walletAddress"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
// Він генерує новий UUID для користувача, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// ValidRole reports whether role is one of the recognised roles.
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleOfficer || role == RoleAdmin
}

// GenerateSigninKey returns a fresh 32-byte sign-in key as hex. The key is
// shown to the user exactly once at registration; only its hash is stored.
func GenerateSigninKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashSigninKey returns the hex SHA-256 of a sign-in key.
func HashSigninKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// VerifySigninKey compares a candidate key against a stored hash in constant
// time.
func VerifySigninKey(storedHash, key string) bool {
	candidate := HashSigninKey(key)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) == 1
}
