// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordRejectsCommon(t *testing.T) {
	err := ValidatePassword("password123!", DefaultPasswordPolicy())
	assert.Error(t, err)
}

func TestValidatePasswordRejectsContainingUsername(t *testing.T) {
	err := ValidatePassword("alice-loves-cups", DefaultPasswordPolicy(), "alice")
	assert.Error(t, err)
}

func TestValidatePasswordAcceptsStrong(t *testing.T) {
	err := ValidatePassword("Tr0mb0ne$Quasar!9", DefaultPasswordPolicy())
	assert.NoError(t, err)
}

func TestValidatePasswordRejectsShort(t *testing.T) {
	err := ValidatePassword("aB1!", DefaultPasswordPolicy())
	assert.Error(t, err)
}

func TestCalculateStrengthDetectsSequential(t *testing.T) {
	s := CalculateStrength("abcdefgh12")
	assert.Contains(t, s.Feedback, "avoid sequential patterns")
}

func TestCalculateStrengthDetectsRepetition(t *testing.T) {
	s := CalculateStrength("aaaaaaaaaa")
	assert.Contains(t, s.Feedback, "avoid repeated characters")
}
