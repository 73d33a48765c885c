package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/classpoll/internal/core/domain"
)

func TestSessionRegistryOpen(t *testing.T) {
	r := NewSessionRegistry(fixedNow)

	session, err := r.Open("teacher")
	require.NoError(t, err)
	assert.Equal(t, "teacher", session.ID)
	assert.Equal(t, "teacher", session.PresenterConnID)
	assert.Empty(t, session.Participants)

	_, err = r.Open("teacher")
	assert.ErrorIs(t, err, domain.ErrAlreadyOpen)
}

func TestSessionRegistryJoin(t *testing.T) {
	r := NewSessionRegistry(fixedNow)
	_, err := r.Open("teacher")
	require.NoError(t, err)

	_, err = r.Join("missing", "c1", "Ann")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = r.Join("teacher", "c1", "Ann")
	require.NoError(t, err)
	session, err := r.Join("teacher", "c1", "Annie")
	require.NoError(t, err)

	require.Len(t, session.Participants, 1)
	assert.Equal(t, "Annie", session.Participants[0].Name)
	assert.Equal(t, []string{"teacher", "c1"}, session.Members())
}

func TestSessionRegistryJoinOwnSession(t *testing.T) {
	r := NewSessionRegistry(fixedNow)
	_, err := r.Open("teacher")
	require.NoError(t, err)

	_, err = r.Join("teacher", "teacher", "Me")
	assert.ErrorIs(t, err, domain.ErrOwnSession)

	session, err := r.Get("teacher")
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher"}, session.Members())
}

func TestSessionRegistryJoinMovesBetweenSessions(t *testing.T) {
	r := NewSessionRegistry(fixedNow)
	_, _ = r.Open("t1")
	_, _ = r.Open("t2")

	_, err := r.Join("t1", "c1", "Ann")
	require.NoError(t, err)
	_, err = r.Join("t2", "c1", "Ann")
	require.NoError(t, err)

	s1, err := r.Get("t1")
	require.NoError(t, err)
	assert.Empty(t, s1.Participants)

	s2, err := r.Get("t2")
	require.NoError(t, err)
	assert.Len(t, s2.Participants, 1)
}

func TestSessionRegistryRemoveParticipant(t *testing.T) {
	r := NewSessionRegistry(fixedNow)
	_, _ = r.Open("teacher")
	_, _ = r.Join("teacher", "c1", "Ann")
	_, _ = r.Join("teacher", "c2", "Bob")

	sessionID, removed := r.RemoveParticipant("c1")
	assert.True(t, removed)
	assert.Equal(t, "teacher", sessionID)

	_, removed = r.RemoveParticipant("c1")
	assert.False(t, removed)

	session, err := r.Get("teacher")
	require.NoError(t, err)
	require.Len(t, session.Participants, 1)
	assert.Equal(t, "Bob", session.Participants[0].Name)
}

func TestSessionRegistryClose(t *testing.T) {
	r := NewSessionRegistry(fixedNow)
	_, _ = r.Open("teacher")
	_, _ = r.Join("teacher", "c1", "Ann")

	closed, err := r.Close("teacher")
	require.NoError(t, err)
	assert.Len(t, closed.Participants, 1)

	_, err = r.Get("teacher")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = r.Close("teacher")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = r.Join("teacher", "c2", "Bob")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
