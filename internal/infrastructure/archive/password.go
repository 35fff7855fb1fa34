package archive

import (
	"crypto/rand"
	"math/big"

	"github.com/notifid/logextractor/internal/domain/errors"
)

const (
	passwordLength = 16

	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()_+"
)

// GeneratePassword returns a 16 character archive password containing at
// least one uppercase letter, one lowercase letter, one digit and one
// special character, drawn from crypto/rand.
func GeneratePassword() (string, error) {
	classes := []string{upperChars, lowerChars, digitChars, specialChars}
	all := upperChars + lowerChars + digitChars + specialChars

	buf := make([]byte, 0, passwordLength)
	for _, class := range classes {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < passwordLength {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	// Shuffle so the mandatory characters do not sit at fixed positions.
	for i := len(buf) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", errors.NewInternalError("password generation failed").WithCause(err)
		}
		j := int(n.Int64())
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, errors.NewInternalError("password generation failed").WithCause(err)
	}
	return set[n.Int64()], nil
}
