package client

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerfoyer/internal/protocol"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func handshakingSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(testLogger())
	require.NoError(t, s.BeginConnect())
	require.NoError(t, s.TransportOpen())
	require.Equal(t, AwaitingHandshake, s.State())
	return s
}

func TestSessionHandshake(t *testing.T) {
	t.Run("compatible server connects", func(t *testing.T) {
		s := handshakingSession(t)

		advisory, err := s.HandleWelcome(protocol.WelcomeData{
			ServerVersion: protocol.ClientVersion.String(),
			ClientID:      "abc123",
		})
		require.NoError(t, err)
		assert.Empty(t, advisory)
		assert.Equal(t, Connected, s.State())
		assert.Equal(t, "abc123", s.ClientID())
	})

	t.Run("patch difference is compatible", func(t *testing.T) {
		s := handshakingSession(t)

		server := protocol.ClientVersion
		server.Patch += 3

		_, err := s.HandleWelcome(protocol.WelcomeData{ServerVersion: server.String()})
		require.NoError(t, err)
		assert.Equal(t, Connected, s.State())
	})

	t.Run("older server is rejected", func(t *testing.T) {
		s := handshakingSession(t)

		_, err := s.HandleWelcome(protocol.WelcomeData{ServerVersion: "0.1.0"})
		require.ErrorIs(t, err, ErrServerOutdated)
		assert.Equal(t, Disconnected, s.State())
	})

	t.Run("newer server rejects this client", func(t *testing.T) {
		s := handshakingSession(t)

		_, err := s.HandleWelcome(protocol.WelcomeData{ServerVersion: "99.0.0"})
		require.ErrorIs(t, err, ErrClientOutdated)
		assert.Equal(t, Disconnected, s.State())
	})

	t.Run("minimum client version enforced", func(t *testing.T) {
		s := handshakingSession(t)

		_, err := s.HandleWelcome(protocol.WelcomeData{
			ServerVersion:    protocol.ClientVersion.String(),
			MinClientVersion: "99.0.0",
		})
		require.ErrorIs(t, err, ErrClientOutdated)
	})

	t.Run("newer release produces advisory only", func(t *testing.T) {
		s := handshakingSession(t)

		latest := protocol.ClientVersion
		latest.Patch += 1

		advisory, err := s.HandleWelcome(protocol.WelcomeData{
			ServerVersion: protocol.ClientVersion.String(),
			LatestClient:  latest.String(),
		})
		require.NoError(t, err)
		assert.Contains(t, advisory, latest.String())
		assert.Equal(t, Connected, s.State())
	})

	t.Run("garbled version is a protocol violation", func(t *testing.T) {
		s := handshakingSession(t)

		_, err := s.HandleWelcome(protocol.WelcomeData{ServerVersion: "banana"})
		require.ErrorIs(t, err, ErrProtocolViolation)
	})

	t.Run("welcome before handshake state", func(t *testing.T) {
		s := NewSession(testLogger())

		_, err := s.HandleWelcome(protocol.WelcomeData{ServerVersion: "1.0.0"})
		require.ErrorIs(t, err, ErrProtocolViolation)
	})
}

func TestSessionDrop(t *testing.T) {
	t.Run("unclean drop is a lost connection", func(t *testing.T) {
		s := handshakingSession(t)
		_, err := s.HandleWelcome(protocol.WelcomeData{
			ServerVersion: protocol.ClientVersion.String(),
			ClientID:      "abc123",
		})
		require.NoError(t, err)

		err = s.Drop(false)
		require.ErrorIs(t, err, ErrConnectionLost)
		assert.Equal(t, Disconnected, s.State())

		// the identity survives for reconnect
		assert.Equal(t, "abc123", s.ClientID())
	})

	t.Run("clean drop is not an error", func(t *testing.T) {
		s := handshakingSession(t)
		require.NoError(t, s.Drop(true))
		assert.Equal(t, Disconnected, s.State())
	})

	t.Run("drop while already disconnected is a no-op", func(t *testing.T) {
		s := NewSession(testLogger())
		require.NoError(t, s.Drop(false))
	})
}
