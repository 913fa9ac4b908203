package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	raw, err := iss.Issue("ana")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	tok, err := iss.Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "ana", claims["sub"])
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewIssuer("secret-a", time.Hour).Issue("ana")
	require.NoError(t, err)

	_, err = NewIssuer("secret-b", time.Hour).Verify(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", -time.Minute)
	raw, err := iss.Issue("ana")
	require.NoError(t, err)

	_, err = iss.Verify(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
