package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerfoyer/internal/game"
	"github.com/lox/pokerfoyer/internal/protocol"
)

const (
	// writeWait bounds every write to the server
	writeWait = 10 * time.Second

	// pingPeriod keeps idle connections alive through proxies
	pingPeriod = 54 * time.Second
)

// Client ties the websocket transport to the session, foyer, table and
// dispatcher. Incoming messages are read on one goroutine and funneled
// into the dispatcher's queue; outgoing writes are serialized by a mutex.
type Client struct {
	logger *log.Logger
	config *Config

	session    *Session
	foyer      *Foyer
	table      *game.Table
	dispatcher *Dispatcher

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a client from configuration. The clock is injectable so
// tests can drive the turn timer.
func New(config *Config, clock quartz.Clock, logger *log.Logger) *Client {
	c := &Client{
		logger:  logger.WithPrefix("client"),
		config:  config,
		session: NewSession(logger),
		foyer:   NewFoyer(logger),
		table:   game.NewTable(logger),
	}

	timer := NewTurnTimer(clock, logger)
	c.dispatcher = NewDispatcher(c.session, c.foyer, c.table, timer, c, logger)
	c.dispatcher.SetLocalPlayer(config.Player.Name)
	c.dispatcher.SetAutoDefaultAction(config.Table.AutoDefaultAction)

	return c
}

// Session exposes connection state for presentation
func (c *Client) Session() *Session { return c.session }

// Foyer exposes the lobby directory for presentation
func (c *Client) Foyer() *Foyer { return c.foyer }

// Table exposes the mirrored table state for presentation
func (c *Client) Table() *game.Table { return c.table }

// Observe registers a presentation observer on the dispatcher
func (c *Client) Observe(fn func(Notice)) { c.dispatcher.Observe(fn) }

// Run connects, logs in, and processes events until the context ends or
// the session terminates. An unclean transport drop is retried up to the
// configured attempt limit, resuming the server-issued client id.
func (c *Client) Run(ctx context.Context) error {
	var attempts int
	for {
		err := c.runOnce(ctx)
		if !errors.Is(err, ErrConnectionLost) {
			return err
		}

		attempts++
		if attempts > c.config.Server.ReconnectAttempts {
			return err
		}

		c.logger.Info("reconnecting", "attempt", attempts, "of", c.config.Server.ReconnectAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(c.config.Server.ReconnectDelay) * time.Second):
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	c.dispatcher.Reset()
	if err := c.session.BeginConnect(); err != nil {
		return err
	}

	conn, err := c.dial()
	if err != nil {
		c.session.Fail(err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.login(); err != nil {
		c.session.Fail(err)
		c.close()
		return err
	}
	if err := c.session.TransportOpen(); err != nil {
		c.close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, loopCancel := context.WithCancel(gctx)
	defer loopCancel()

	g.Go(func() error {
		return c.readPump(conn)
	})
	g.Go(func() error {
		return c.pingLoop(loopCtx, conn)
	})
	g.Go(func() error {
		defer loopCancel()
		defer c.close()
		return c.dispatcher.Run(gctx)
	})

	return g.Wait()
}

// pingLoop keeps the connection alive while the dispatcher runs. Control
// frames may be written concurrently with regular messages.
func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// dial opens the websocket connection, rewriting http schemes
func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.config.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Info("connecting", "url", u.String())

	dialer := websocket.Dialer{HandshakeTimeout: time.Duration(c.config.Server.ConnectTimeout) * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return conn, nil
}

// login announces the player and protocol version. A retained client id
// from an earlier session asks the server to resume that identity.
func (c *Client) login() error {
	msg, err := protocol.NewMessage(protocol.TypeLogin, protocol.LoginData{
		Name:     c.config.Player.Name,
		Version:  protocol.ClientVersion.String(),
		ClientID: c.session.ClientID(),
	})
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// readPump reads messages until the connection drops, feeding each into
// the dispatcher in arrival order.
func (c *Client) readPump(conn *websocket.Conn) error {
	for {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				closed := &protocol.Message{Type: protocol.TypeConnectionClosed}
				_ = c.dispatcher.Enqueue(closed)
				return nil
			}
			lost := &protocol.Message{Type: localConnectionLost}
			_ = c.dispatcher.Enqueue(lost)
			return nil
		}

		if err := c.dispatcher.Enqueue(&msg); err != nil {
			c.logger.Warn("dropping message", "error", err)
		}
	}
}

// Send writes a message to the server. Implements Outbound for the
// dispatcher's default-action submission.
func (c *Client) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// close tears down the websocket after a polite close frame. Idempotent;
// both pumps may race to it.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.conn.Close()
		c.conn = nil
	}
}

// SubscribeFoyer asks the server to stream lobby updates
func (c *Client) SubscribeFoyer() error {
	msg, err := protocol.NewMessage(protocol.TypeSubscribeFoyer, nil)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// UnsubscribeFoyer stops lobby updates
func (c *Client) UnsubscribeFoyer() error {
	msg, err := protocol.NewMessage(protocol.TypeUnsubscribeFoyer, nil)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// CreateGame asks the server to open a new game
func (c *Client) CreateGame(data protocol.CreateGameData) error {
	msg, err := protocol.NewMessage(protocol.TypeCreateGame, data)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// JoinTable requests a seat in a listed game. The password for a private
// game is remembered so a reconnect can rejoin without prompting.
func (c *Client) JoinTable(gameID int, password string) error {
	msg, err := protocol.NewMessage(protocol.TypeJoinTable, protocol.JoinTableData{
		GameID:   gameID,
		Password: password,
	})
	if err != nil {
		return err
	}
	if err := c.Send(msg); err != nil {
		return err
	}
	if password != "" {
		c.foyer.RememberPassword(gameID, password)
	}
	return nil
}

// SubmitAction sends the local player's decision. The table is not
// updated until the server echoes the action back.
func (c *Client) SubmitAction(kind game.ActionKind, amount int) error {
	msg, err := protocol.NewMessage(protocol.TypeSubmitAction, protocol.SubmitActionData{
		Kind:   kind.String(),
		Amount: amount,
	})
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// SuggestAction derives legal-action hints for the local seat. The server
// remains the arbiter; these only seed the action prompt.
func (c *Client) SuggestAction() (game.Suggestion, error) {
	if c.table.LocalSeat < 0 {
		return game.Suggestion{}, ErrNotConnected
	}
	return game.Suggest(c.table, c.table.LocalSeat)
}

// Logout announces a clean departure before closing
func (c *Client) Logout() error {
	msg, err := protocol.NewMessage(protocol.TypeLogout, nil)
	if err != nil {
		return err
	}
	return c.Send(msg)
}
