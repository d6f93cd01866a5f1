package client

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerfoyer/internal/protocol"
)

// SessionState is the connection lifecycle state
type SessionState int

const (
	Disconnected SessionState = iota
	Connecting
	AwaitingHandshake
	Connected
)

// String returns the string representation of a session state
func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case AwaitingHandshake:
		return "awaiting-handshake"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Session tracks the connection lifecycle and the version handshake with
// the server. It is mutated only from the dispatcher's event loop.
type Session struct {
	logger  *log.Logger
	state   SessionState
	version protocol.Version

	clientID      string // server-issued, retained across drops for reconnect
	serverVersion protocol.Version
}

// NewSession creates a session speaking the compiled-in protocol version
func NewSession(logger *log.Logger) *Session {
	return &Session{
		logger:  logger.WithPrefix("session"),
		state:   Disconnected,
		version: protocol.ClientVersion,
	}
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	return s.state
}

// ClientID returns the server-issued identifier, if any. It survives a
// disconnect so a reconnect can resume the same identity.
func (s *Session) ClientID() string {
	return s.clientID
}

// ServerVersion returns the negotiated server version
func (s *Session) ServerVersion() protocol.Version {
	return s.serverVersion
}

// BeginConnect transitions Disconnected -> Connecting
func (s *Session) BeginConnect() error {
	if s.state != Disconnected {
		return fmt.Errorf("connect while %s", s.state)
	}
	s.state = Connecting
	return nil
}

// TransportOpen transitions Connecting -> AwaitingHandshake once the
// transport is established and the login has been sent.
func (s *Session) TransportOpen() error {
	if s.state != Connecting {
		return fmt.Errorf("transport open while %s", s.state)
	}
	s.state = AwaitingHandshake
	s.logger.Debug("awaiting handshake")
	return nil
}

// HandleWelcome completes the version handshake. It returns a non-empty
// advisory when a newer (but still compatible) client release exists.
// Incompatibility is fatal in either direction: ErrServerOutdated when the
// server is behind, ErrClientOutdated when this client is.
func (s *Session) HandleWelcome(data protocol.WelcomeData) (advisory string, err error) {
	if s.state != AwaitingHandshake {
		return "", fmt.Errorf("%w: welcome while %s", ErrProtocolViolation, s.state)
	}

	serverVersion, perr := protocol.ParseVersion(data.ServerVersion)
	if perr != nil {
		s.state = Disconnected
		return "", fmt.Errorf("%w: %v", ErrProtocolViolation, perr)
	}

	if !s.version.Compatible(serverVersion) {
		s.state = Disconnected
		if serverVersion.Less(s.version) {
			return "", fmt.Errorf("%w: server speaks %s, client %s",
				ErrServerOutdated, serverVersion, s.version)
		}
		return "", fmt.Errorf("%w: server speaks %s, client %s",
			ErrClientOutdated, serverVersion, s.version)
	}

	if data.MinClientVersion != "" {
		minVersion, perr := protocol.ParseVersion(data.MinClientVersion)
		if perr != nil {
			s.state = Disconnected
			return "", fmt.Errorf("%w: %v", ErrProtocolViolation, perr)
		}
		if s.version.Less(minVersion) {
			s.state = Disconnected
			return "", fmt.Errorf("%w: server requires at least %s, client is %s",
				ErrClientOutdated, minVersion, s.version)
		}
	}

	s.serverVersion = serverVersion
	s.clientID = data.ClientID
	s.state = Connected
	s.logger.Info("connected", "server", serverVersion, "clientId", data.ClientID)

	// a newer compatible client release is advisory only
	if data.LatestClient != "" {
		if latest, perr := protocol.ParseVersion(data.LatestClient); perr == nil && s.version.Less(latest) {
			advisory = fmt.Sprintf("client %s is available (running %s)", latest, s.version)
		}
	}

	return advisory, nil
}

// Fail force-closes the session after a fatal fault
func (s *Session) Fail(err error) {
	s.logger.Error("session failed", "error", err)
	s.state = Disconnected
}

// Drop records a transport loss. Returns ErrConnectionLost unless the
// close was clean (server-initiated shutdown).
func (s *Session) Drop(clean bool) error {
	prev := s.state
	s.state = Disconnected

	if prev == Disconnected || clean {
		s.logger.Info("disconnected")
		return nil
	}

	s.logger.Warn("connection lost", "was", prev)
	return ErrConnectionLost
}
