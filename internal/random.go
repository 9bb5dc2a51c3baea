package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
)

type CaptchaID [16]byte

const sessionTokenSize = 16

func NewCaptchaID() (CaptchaID, error) {
	var cid CaptchaID
	_, err := rand.Read(cid[:])
	return cid, err
}

func (c CaptchaID) Bytes() []byte {
	return c[:]
}

func (c CaptchaID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(c[:])
}

func ParseCaptchaID(captchaID string) (CaptchaID, error) {
	var cid CaptchaID

	raw, err := base64.RawURLEncoding.DecodeString(captchaID)
	if err != nil {
		return cid, err
	}
	if len(raw) != len(cid) {
		return cid, errors.New("invalid captcha id size")
	}

	copy(cid[:], raw)
	return cid, nil
}

// NewSessionToken generates the possession-check secret returned alongside a
// captcha id. It is drawn independently of the id and is never derivable from it.
func NewSessionToken() (string, error) {
	var secret [sessionTokenSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(secret[:]), nil
}

// RandomIndex returns a uniform index in [0, n).
func RandomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("invalid index bound")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// RandomRange returns a uniform integer in [min, max] inclusive.
func RandomRange(min, max int) (int, error) {
	if max < min {
		return 0, errors.New("invalid range bounds")
	}
	offset, err := RandomIndex(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + offset, nil
}

// CoinFlip returns true with probability 1/2.
func CoinFlip() (bool, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return false, err
	}
	return b[0]&1 == 1, nil
}
