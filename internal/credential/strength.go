// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package credential

import (
	"math"
	"strings"
	"unicode"

	apperrors "grimm.is/printgate/internal/errors"
)

// PasswordPolicy gates which passwords printgatectl will accept into a
// digest password file.
type PasswordPolicy struct {
	MinLength  int
	MinEntropy float64
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:  12,
		MinEntropy: 60.0,
	}
}

// Strength reports the entropy-derived score for a candidate password.
type Strength struct {
	Score       int
	Length      int
	Entropy     float64
	CharsetSize int
	Complexity  int
	Feedback    []string
}

// ValidatePassword rejects passwords shorter than policy.MinLength, whose
// entropy is below policy.MinEntropy, or scoring below the weak/medium
// boundary. username, if given, disqualifies a password that contains it.
func ValidatePassword(password string, policy PasswordPolicy, username ...string) error {
	if len(password) < 1 {
		return apperrors.New(apperrors.KindValidation, "password cannot be empty")
	}
	if len(password) < policy.MinLength {
		return apperrors.Errorf(apperrors.KindValidation, "password shorter than minimum length %d", policy.MinLength)
	}

	strength := CalculateStrength(password, username...)
	if strength.Score < 2 {
		return apperrors.Errorf(apperrors.KindValidation, "password is too weak (score=%d/4)", strength.Score)
	}
	if strength.Entropy < policy.MinEntropy {
		return apperrors.Errorf(apperrors.KindValidation, "password entropy %.1f below minimum %.1f", strength.Entropy, policy.MinEntropy)
	}
	return nil
}

// CalculateStrength scores a password by entropy with pattern penalties.
func CalculateStrength(password string, username ...string) Strength {
	strength := Strength{Length: len(password)}

	poolSize := 0
	complexity := 0
	var hasLower, hasUpper, hasDigit, hasSymbol bool

	for _, char := range password {
		switch {
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSymbol = true
		}
	}
	if hasLower {
		poolSize += 26
		complexity++
	}
	if hasUpper {
		poolSize += 26
		complexity++
	}
	if hasDigit {
		poolSize += 10
		complexity++
	}
	if hasSymbol {
		poolSize += 33
		complexity++
	}
	if poolSize == 0 {
		poolSize = 26
	}
	strength.Complexity = complexity
	strength.CharsetSize = poolSize

	entropy := float64(len(password)) * math.Log2(float64(poolSize))

	lower := strings.ToLower(password)
	if lower == "password" || password == "12345678" {
		entropy = 0
		strength.Feedback = append(strength.Feedback, "password is too common")
	}
	if len(username) > 0 && username[0] != "" && strings.Contains(lower, strings.ToLower(username[0])) {
		entropy = 0
		strength.Feedback = append(strength.Feedback, "password contains username")
	}
	if hasRepetition(password) {
		entropy -= 15
		strength.Feedback = append(strength.Feedback, "avoid repeated characters")
	}
	if hasSequential(password) {
		entropy -= 15
		strength.Feedback = append(strength.Feedback, "avoid sequential patterns")
	}
	if entropy < 0 {
		entropy = 0
	}
	strength.Entropy = entropy

	switch {
	case entropy < 40:
		strength.Score = 1
	case entropy < 70:
		strength.Score = 2
	default:
		strength.Score = 4
	}

	return strength
}

func hasRepetition(s string) bool {
	if len(s) < 3 {
		return false
	}
	for i := 0; i < len(s)-2; i++ {
		if s[i] == s[i+1] && s[i] == s[i+2] {
			return true
		}
	}
	return false
}

func hasSequential(s string) bool {
	if len(s) < 3 {
		return false
	}
	lower := strings.ToLower(s)
	seq := "abcdefghijklmnopqrstuvwxyz0123456789"
	revSeq := "zyxwvutsrqponmlkjihgfedcba9876543210"

	for i := 0; i < len(s)-2; i++ {
		sub := lower[i : i+3]
		if strings.Contains(seq, sub) || strings.Contains(revSeq, sub) {
			return true
		}
	}
	return false
}
