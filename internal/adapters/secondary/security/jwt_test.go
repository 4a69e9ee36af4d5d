package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyAndVerifier(t *testing.T) (*rsa.PrivateKey, *SessionVerifier) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	verifier, err := NewSessionVerifier(pubPEM)
	require.NoError(t, err)
	return key, verifier
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerify_ValidToken(t *testing.T) {
	key, verifier := newKeyAndVerifier(t)

	token := signToken(t, key, SessionClaims{
		Username: "alice_sky",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_2abcDEF",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	principal, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abcDEF", principal.SubjectID)
	assert.Equal(t, "alice_sky", principal.Username)
}

func TestVerify_ExpiredToken(t *testing.T) {
	key, verifier := newKeyAndVerifier(t)

	token := signToken(t, key, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_2abcDEF",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongKeyRejected(t *testing.T) {
	_, verifier := newKeyAndVerifier(t)
	otherKey, _ := newKeyAndVerifier(t) // autre paire de clés

	token := signToken(t, otherKey, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_2abcDEF",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_HMACAlgRejected(t *testing.T) {
	_, verifier := newKeyAndVerifier(t)

	// Confusion d'algorithme : un token HS256 ne doit jamais passer,
	// même si la signature serait "valide" pour une clé partagée.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_2abcDEF",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingSubjectRejected(t *testing.T) {
	key, verifier := newKeyAndVerifier(t)

	token := signToken(t, key, SessionClaims{
		Username: "alice_sky",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
