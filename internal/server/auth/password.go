package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordLen is the longest input bcrypt accepts.
const maxPasswordLen = 72

func HashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if len(password) > maxPasswordLen {
		return nil, fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, maxPasswordLen)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword reports whether password matches hash. A mismatch is not
// an error.
func VerifyPassword(password string, hash []byte) (bool, error) {
	if password == "" || len(hash) == 0 {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
