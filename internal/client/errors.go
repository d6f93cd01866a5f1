package client

import "errors"

// Session-terminating failures. None of these are retried automatically;
// the user (or an external reconnect policy) must start a new session.
var (
	// ErrServerOutdated means the server speaks an older, incompatible
	// protocol. The server admin must upgrade, or the client downgrade.
	ErrServerOutdated = errors.New("server protocol is outdated")

	// ErrClientOutdated means the server requires a newer client.
	ErrClientOutdated = errors.New("client is too old for this server")

	// ErrProtocolViolation means the server sent a malformed or
	// out-of-sequence message. The session is closed immediately.
	ErrProtocolViolation = errors.New("protocol violation")
)

// Recoverable faults.
var (
	// ErrConnectionLost is a transport drop, distinguishable from a
	// clean server-initiated close. The session may be re-established
	// with the previously issued client id.
	ErrConnectionLost = errors.New("connection lost")

	// ErrNotConnected is returned for operations that need a live session.
	ErrNotConnected = errors.New("not connected")
)
