package security

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Principal est l'identité extraite d'un token de session valide.
type Principal struct {
	SubjectID string // L'identifiant opaque émis par le provider
	Username  string
}

// SessionClaims : le provider met le subject dans "sub" et le handle public
// dans un claim "username".
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionVerifier valide les JWT de session émis par le provider d'identité
// externe. On ne signe JAMAIS : on ne détient que la clé publique.
type SessionVerifier struct {
	publicKey *rsa.PublicKey
}

func NewSessionVerifier(publicKeyPEM []byte) (*SessionVerifier, error) {
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session public key: %w", err)
	}
	return &SessionVerifier{publicKey: pubKey}, nil
}

// Verify vérifie la signature et retourne le principal.
func (v *SessionVerifier) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Sécurité critique : refuser tout alg autre que RSA.
		// Empêche les attaques "alg: none" ou la confusion RS256/HS256.
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{SubjectID: claims.Subject, Username: claims.Username}, nil
}
