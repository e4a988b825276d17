package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
)

const alphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomAlphabet returns a random string of length n over an
// alphabet without look-alike characters.
func GenerateRandomAlphabet(n uint) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[RandIntn(len(alphabet))]
	}
	return string(b)
}

// SHA256 returns the hex encoded sha256 digest of b.
func SHA256(b []byte) string {
	hashed := sha256.Sum256(b)
	return hex.EncodeToString(hashed[:])
}

func HMAC(data []byte, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC compares the expected signature of data with signature in
// constant time.
func VerifyHMAC(data []byte, secret []byte, signature string) bool {
	expected := HMAC(data, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// NewSeed returns a random 64-bit seed read from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
