package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 32 bytes → AES-256
const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestService(t *testing.T) *AesGcmService {
	t.Helper()
	svc, err := NewAesGcmService(testKeyHex)
	require.NoError(t, err)
	return svc
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	ciphertext, err := svc.Encrypt("s3cr3t")
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "s3cr3t")

	plaintext, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", plaintext)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Encrypt("s3cr3t")
	require.NoError(t, err)
	second, err := svc.Encrypt("s3cr3t")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	svc := newTestService(t)
	ciphertext, err := svc.Encrypt("s3cr3t")
	require.NoError(t, err)

	other, err := NewAesGcmService("1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100")
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecrypt_TamperedCiphertextFails(t *testing.T) {
	svc := newTestService(t)
	ciphertext, err := svc.Encrypt("s3cr3t")
	require.NoError(t, err)

	flipped := "0"
	if strings.HasPrefix(ciphertext, "0") {
		flipped = "1"
	}
	tampered := flipped + ciphertext[1:]

	_, err = svc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestDecrypt_GarbageInputs(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Decrypt("not-hex")
	assert.Error(t, err)

	_, err = svc.Decrypt("abcd") // shorter than a nonce
	assert.Error(t, err)
}

func TestNewAesGcmService_RejectsBadKeys(t *testing.T) {
	_, err := NewAesGcmService("zz")
	assert.Error(t, err)

	_, err = NewAesGcmService("0001") // 2 bytes, not a valid AES key size
	assert.Error(t, err)
}
