package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const inviteSubject = "invite"

var (
	// ErrTokenExpired is returned when the token was well formed and
	// correctly signed but its expiry timestamp has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers every other decode failure: bad structure,
	// wrong signature, wrong signing method or missing claims.
	ErrTokenInvalid = errors.New("token invalid")
)

type InviteClaims struct {
	InvitationId string `json:"invitation_id"`
	jwt.StandardClaims
}

// EncodeInvite signs an expiring invite token carrying the invitation id.
// Issuance happens at invite time; the token is then verified statelessly
// any number of times until expiry.
func EncodeInvite(invitationId, secret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, InviteClaims{
		InvitationId: invitationId,
		StandardClaims: jwt.StandardClaims{
			Subject:   inviteSubject,
			IssuedAt:  now.Unix(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}).SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return token, nil
}

// DecodeInvite verifies signature and expiry and returns the claims.
// Expiry is reported as ErrTokenExpired, everything else as ErrTokenInvalid,
// so callers can distinguish the two without inspecting library errors.
func DecodeInvite(token, secret string) (*InviteClaims, error) {
	claims := new(InviteClaims)

	parsed, err := jwt.ParseWithClaims(token, claims, func(jwtToken *jwt.Token) (interface{}, error) {
		if _, ok := jwtToken.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method: %s", jwtToken.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !parsed.Valid || claims.Subject != inviteSubject || claims.InvitationId == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
