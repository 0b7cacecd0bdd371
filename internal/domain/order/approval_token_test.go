package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApprovalToken(t *testing.T) {
	token, err := NewApprovalToken(uuid.New(), uuid.New(), "partner@example.com")
	require.NoError(t, err)

	// 32 random bytes give 43 unpadded base64url characters
	assert.Len(t, token.Token, 43)
	assert.False(t, token.Used)
	assert.Nil(t, token.UsedAt)

	other, err := NewApprovalToken(uuid.New(), uuid.New(), "partner@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, token.Token, other.Token)
}

func TestTokenRedeem(t *testing.T) {
	token, err := NewApprovalToken(uuid.New(), uuid.New(), "partner@example.com")
	require.NoError(t, err)

	require.NoError(t, token.Redeem())
	assert.True(t, token.Used)
	require.NotNil(t, token.UsedAt)

	assert.Error(t, token.Redeem())
}

func TestDecisionVerb(t *testing.T) {
	v, err := DecisionAccept.Verb()
	require.NoError(t, err)
	assert.Equal(t, VerbAccept, v)

	v, err = DecisionReject.Verb()
	require.NoError(t, err)
	assert.Equal(t, VerbReject, v)

	_, err = Decision("maybe").Verb()
	assert.Error(t, err)
}
