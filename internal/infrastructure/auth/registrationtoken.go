package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "instra/internal/shared/errors"
)

// registrationClaims carry only the request identifier and the stored
// nonce. Everything else about the request is looked up server-side.
type registrationClaims struct {
	RID   string `json:"rid"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// RegistrationTokenService signs and verifies the links embedded in
// onboarding invite emails. Verification failures of any kind (bad
// signature, malformed token, past max-age) surface as the same generic
// token error so the public endpoint leaks nothing about which check broke.
type RegistrationTokenService struct {
	secret []byte
	maxAge time.Duration
}

func NewRegistrationTokenService(secret string, maxAge time.Duration) *RegistrationTokenService {
	return &RegistrationTokenService{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

func (s *RegistrationTokenService) Generate(rid, nonce string) (string, error) {
	now := time.Now().UTC()
	claims := &registrationClaims{
		RID:   rid,
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", appErrors.NewInternalError("failed to sign registration token")
	}
	return signed, nil
}

// Verify returns the embedded request id and nonce, or the generic token
// error. The caller still has to compare the nonce against the stored one.
func (s *RegistrationTokenService) Verify(tokenString string) (rid string, nonce string, err error) {
	token, parseErr := jwt.ParseWithClaims(tokenString, &registrationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if parseErr != nil {
		return "", "", appErrors.NewTokenError()
	}

	claims, ok := token.Claims.(*registrationClaims)
	if !ok || !token.Valid {
		return "", "", appErrors.NewTokenError()
	}

	// Enforce the configured max-age against issued-at as well, so a
	// token minted with a longer expiry by an older secret holder still
	// dies at the policy boundary.
	if claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > s.maxAge {
		return "", "", appErrors.NewTokenError()
	}

	if claims.RID == "" || claims.Nonce == "" {
		return "", "", appErrors.NewTokenError()
	}

	return claims.RID, claims.Nonce, nil
}
