package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// AuthCode issues and verifies the short-lived codes handed to the
// speech-to-text client before it may request an API key. A code is the
// SHA-256 of the current 30-second time step concatenated with a shared
// salt; verification accepts one step of drift either way.
type AuthCode struct {
	salt  string
	step  time.Duration
	clock func() time.Time
}

func NewAuthCode(salt string) *AuthCode {
	return &AuthCode{
		salt:  salt,
		step:  30 * time.Second,
		clock: time.Now,
	}
}

// Generate returns the code for the current time step.
func (a *AuthCode) Generate() string {
	return a.codeAt(a.currentStep())
}

// Verify checks the received code against the previous, current, and next
// time steps.
func (a *AuthCode) Verify(code string) bool {
	cur := a.currentStep()
	for _, ts := range []int64{cur - 1, cur, cur + 1} {
		if code == a.codeAt(ts) {
			return true
		}
	}
	return false
}

func (a *AuthCode) currentStep() int64 {
	return a.clock().Unix() / int64(a.step/time.Second)
}

func (a *AuthCode) codeAt(step int64) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(step, 10) + a.salt))
	return hex.EncodeToString(sum[:])
}
