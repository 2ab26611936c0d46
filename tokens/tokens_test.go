package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	token, err := EncodeInvite("inv_1", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := DecodeInvite(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "inv_1", claims.InvitationId)
}

func TestDecodeExpiredToken(t *testing.T) {
	token, err := EncodeInvite("inv_1", testSecret, -time.Second)
	require.NoError(t, err)

	_, err = DecodeInvite(token, testSecret)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeWrongSecret(t *testing.T) {
	token, err := EncodeInvite("inv_1", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = DecodeInvite(token, "other-secret")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := DecodeInvite("not-a-token", testSecret)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeTamperedToken(t *testing.T) {
	token, err := EncodeInvite("inv_1", testSecret, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = DecodeInvite(tampered, testSecret)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
