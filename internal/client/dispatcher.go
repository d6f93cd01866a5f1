package client

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerfoyer/internal/deck"
	"github.com/lox/pokerfoyer/internal/evaluator"
	"github.com/lox/pokerfoyer/internal/game"
	"github.com/lox/pokerfoyer/internal/protocol"
)

// Synthetic message types fed into the same queue as server events so that
// every state mutation flows through one ordered stream.
const (
	localTurnExpired    protocol.MessageType = "local_turn_expired"
	localConnectionLost protocol.MessageType = "local_connection_lost"
)

type localTurnExpiredData struct {
	Seat int `json:"seat"`
}

// NoticeKind classifies notifications to presentation observers
type NoticeKind int

const (
	NoticeConnected NoticeKind = iota
	NoticeUpgradeAdvisory
	NoticeConnectionLost
	NoticeClosed
	NoticeFault
	NoticeFoyerChanged
	NoticeTableChanged
	NoticeTurnStarted
	NoticeTurnExpired
	NoticePotAwarded
)

// Notice is a read-only notification for presentation. Observers never get
// write access to core state.
type Notice struct {
	Kind    NoticeKind
	Message string
	Seat    int
	Amount  int
}

// Outbound sends client requests to the server. Implemented by the
// transport; a nil Outbound disables automatic default actions.
type Outbound interface {
	Send(*protocol.Message) error
}

// Dispatcher decodes incoming protocol messages and applies them to the
// session, foyer and table strictly in arrival order. It is the single
// writer for all core state.
type Dispatcher struct {
	logger  *log.Logger
	session *Session
	foyer   *Foyer
	table   *game.Table
	timer   *TurnTimer
	out     Outbound

	localName string
	autoAct   bool

	queue     chan *protocol.Message
	observers []func(Notice)
}

// NewDispatcher wires the dispatcher to the core components
func NewDispatcher(session *Session, foyer *Foyer, table *game.Table, timer *TurnTimer, out Outbound, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		logger:  logger.WithPrefix("dispatch"),
		session: session,
		foyer:   foyer,
		table:   table,
		timer:   timer,
		out:     out,
		queue:   make(chan *protocol.Message, 256),
	}
}

// SetLocalPlayer names the local player so seat events can be matched
func (d *Dispatcher) SetLocalPlayer(name string) {
	d.localName = name
}

// SetAutoDefaultAction enables submitting the default action (check when
// free, else fold) when the local seat's turn timer expires.
func (d *Dispatcher) SetAutoDefaultAction(enabled bool) {
	d.autoAct = enabled
}

// Observe registers a presentation observer. Register before Run; the
// observer runs on the dispatch goroutine and must not block.
func (d *Dispatcher) Observe(fn func(Notice)) {
	d.observers = append(d.observers, fn)
}

// Enqueue adds a message to the dispatch queue in arrival order
func (d *Dispatcher) Enqueue(msg *protocol.Message) error {
	select {
	case d.queue <- msg:
		return nil
	default:
		return fmt.Errorf("dispatch queue full, dropping %s", msg.Type)
	}
}

// Reset discards any messages left over from a dropped connection
func (d *Dispatcher) Reset() {
	d.timer.Stop()
	for {
		select {
		case <-d.queue:
		default:
			return
		}
	}
}

// Run applies queued messages until the context ends, the server closes
// the connection, or a fatal fault occurs. Returns ErrConnectionLost on
// an unclean transport drop so the caller can reconnect.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.timer.Stop()
			return ctx.Err()
		case msg := <-d.queue:
			done, err := d.apply(msg)
			if err != nil || done {
				d.timer.Stop()
				return err
			}
		}
	}
}

func (d *Dispatcher) notify(n Notice) {
	for _, fn := range d.observers {
		fn(n)
	}
}

// fatal closes the session over a protocol fault and stops the run loop
func (d *Dispatcher) fatal(err error) error {
	d.session.Fail(err)
	d.timer.Stop()
	d.notify(Notice{Kind: NoticeFault, Message: err.Error()})
	return err
}

func (d *Dispatcher) violation(format string, args ...interface{}) error {
	return d.fatal(fmt.Errorf("%w: %s", ErrProtocolViolation, fmt.Sprintf(format, args...)))
}

// apply dispatches one message. done is true when the session ended
// cleanly and the loop should stop without error.
func (d *Dispatcher) apply(msg *protocol.Message) (done bool, err error) {
	d.logger.Debug("event", "type", msg.Type)

	// transport-level events are valid in any state
	switch msg.Type {
	case localConnectionLost:
		if err := d.session.Drop(false); err != nil {
			d.notify(Notice{Kind: NoticeConnectionLost, Message: err.Error()})
			return true, err
		}
		return true, nil
	case protocol.TypeConnectionClosed:
		var data protocol.ConnectionClosedData
		_ = msg.Decode(&data)
		_ = d.session.Drop(true)
		d.notify(Notice{Kind: NoticeClosed, Message: data.Reason})
		return true, nil
	case protocol.TypeError:
		var data protocol.ErrorData
		_ = msg.Decode(&data)
		d.notify(Notice{Kind: NoticeFault, Message: data.Message})
		return false, nil
	case protocol.TypeProtocolError:
		var data protocol.ProtocolErrorData
		_ = msg.Decode(&data)
		return true, d.fatal(fmt.Errorf("%w: %s", ErrProtocolViolation, data.Message))
	}

	// before the handshake completes, only the welcome is acceptable
	if d.session.State() != Connected {
		if msg.Type != protocol.TypeWelcome {
			return true, d.violation("%s before handshake", msg.Type)
		}
		return d.applyWelcome(msg)
	}

	switch msg.Type {
	case protocol.TypeWelcome:
		return true, d.violation("duplicate welcome")

	case protocol.TypeGameListed:
		var data protocol.GameListedData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad game_listed: %v", err)
		}
		d.foyer.Upsert(Game{
			ID:           data.ID,
			Name:         data.Name,
			Type:         ParseGameType(data.GameType),
			Mode:         data.Mode,
			State:        ParseGameState(data.State),
			Players:      data.Players,
			MaxPlayers:   data.MaxPlayers,
			TurnTimeout:  data.TurnTimeout,
			InitialStake: data.InitialStake,
			Blinds: BlindSchedule{
				Start:         data.BlindStart,
				RaiseFactor:   data.RaiseFactor,
				RaiseInterval: data.RaiseInterval,
			},
			Private: data.Private,
		})
		d.notify(Notice{Kind: NoticeFoyerChanged})

	case protocol.TypeGameRemoved:
		var data protocol.GameRemovedData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad game_removed: %v", err)
		}
		d.foyer.Remove(data.ID)
		d.notify(Notice{Kind: NoticeFoyerChanged})

	case protocol.TypePlayerJoined:
		var data protocol.PlayerInfoData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad player_joined: %v", err)
		}
		d.foyer.PlayerJoined(data.ID, data.Name)
		d.notify(Notice{Kind: NoticeFoyerChanged})

	case protocol.TypePlayerLeft:
		var data protocol.PlayerInfoData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad player_left: %v", err)
		}
		d.foyer.PlayerLeft(data.ID)
		d.notify(Notice{Kind: NoticeFoyerChanged})

	case protocol.TypeGameStarted:
		var data protocol.GameStartedData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad game_started: %v", err)
		}
		seats := make([]game.Seat, len(data.Seats))
		for i, s := range data.Seats {
			seats[i] = game.Seat{Index: s.Seat, Name: s.Name, Stack: s.Stack, Status: game.SeatActive}
			if s.Name == d.localName {
				d.table.LocalSeat = s.Seat
			}
		}
		d.table.Sit(seats)
		d.table.Dealer = data.Dealer
		d.notify(Notice{Kind: NoticeTableChanged})

	case protocol.TypeGameEnded:
		var data protocol.GameEndedData
		_ = msg.Decode(&data)
		d.timer.Stop()
		d.table.EndGame()
		d.logger.Info("game ended", "gameId", data.GameID)
		d.notify(Notice{Kind: NoticeTableChanged})

	case protocol.TypeNewHand:
		var data protocol.NewHandData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad new_hand: %v", err)
		}
		d.timer.Stop()
		d.table.BeginHand(data.Hand, data.Dealer, data.SmallBlindSeat, data.BigBlindSeat)
		d.notify(Notice{Kind: NoticeTableChanged})

	case protocol.TypeBlindLevel:
		var data protocol.BlindLevelData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad blind_level: %v", err)
		}
		d.table.ApplyBlindLevel(data.Level, data.Small, data.Big)
		d.notify(Notice{Kind: NoticeTableChanged})

	case protocol.TypeHoleCards:
		var data protocol.HoleCardsData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad hole_cards: %v", err)
		}
		cards, err := deck.ParseEach(data.Cards)
		if err != nil {
			return true, d.violation("bad hole cards: %v", err)
		}
		if err := d.table.SetHoleCards(data.Seat, cards); err != nil {
			return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
		}
		d.notify(Notice{Kind: NoticeTableChanged, Seat: data.Seat})

	case protocol.TypeFlop, protocol.TypeTurnCard, protocol.TypeRiverCard:
		return d.applyBoard(msg)

	case protocol.TypePlayerFolded, protocol.TypePlayerChecked, protocol.TypePlayerCalled,
		protocol.TypePlayerBet, protocol.TypePlayerRaised, protocol.TypePlayerAllIn:
		return d.applyAction(msg)

	case protocol.TypeTurnStarted:
		var data protocol.TurnStartedData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad turn_started: %v", err)
		}
		if err := d.table.ApplyTurnStarted(data.Seat); err != nil {
			return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
		}
		d.timer.Start(data.Seat, data.DeadlineSeconds, func(seat int) {
			expired, _ := protocol.NewMessage(localTurnExpired, localTurnExpiredData{Seat: seat})
			if err := d.Enqueue(expired); err != nil {
				d.logger.Warn("dropping timer expiry", "error", err)
			}
		})
		d.notify(Notice{Kind: NoticeTurnStarted, Seat: data.Seat, Amount: data.DeadlineSeconds})

	case localTurnExpired:
		var data localTurnExpiredData
		if err := msg.Decode(&data); err != nil {
			return false, nil
		}
		d.applyTurnExpired(data.Seat)

	case protocol.TypePlayerShowed:
		var data protocol.PlayerShowedData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad player_showed: %v", err)
		}
		cards, err := deck.ParseEach(data.Cards)
		if err != nil {
			return true, d.violation("bad shown cards: %v", err)
		}
		d.timer.Cancel(data.Seat)
		if err := d.table.ApplyShowdown(data.Seat, cards); err != nil {
			return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
		}
		d.notify(Notice{Kind: NoticeTableChanged, Seat: data.Seat, Message: d.describeShown(cards)})

	case protocol.TypePotAwarded, protocol.TypeOddChipsAwarded:
		var data protocol.PotAwardedData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad pot award: %v", err)
		}
		if err := d.table.ApplyAward(data.Pot, data.Seat, data.Amount); err != nil {
			return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
		}
		d.notify(Notice{Kind: NoticePotAwarded, Seat: data.Seat, Amount: data.Amount})

	case protocol.TypePlayerBroke:
		var data protocol.PlayerBrokeData
		if err := msg.Decode(&data); err != nil {
			return true, d.violation("bad player_broke: %v", err)
		}
		d.timer.Cancel(data.Seat)
		if err := d.table.ApplyBroke(data.Seat); err != nil {
			return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
		}
		d.notify(Notice{Kind: NoticeTableChanged, Seat: data.Seat})

	case protocol.TypeTableSnapshot:
		return d.applySnapshot(msg)

	default:
		// unknown message types are skipped so compatible servers can
		// extend the protocol with new events
		d.logger.Debug("ignoring unknown message", "type", msg.Type)
	}

	return false, nil
}

func (d *Dispatcher) applyWelcome(msg *protocol.Message) (bool, error) {
	var data protocol.WelcomeData
	if err := msg.Decode(&data); err != nil {
		return true, d.violation("bad welcome: %v", err)
	}

	advisory, err := d.session.HandleWelcome(data)
	if err != nil {
		d.notify(Notice{Kind: NoticeFault, Message: err.Error()})
		return true, err
	}

	d.notify(Notice{Kind: NoticeConnected})
	if advisory != "" {
		d.notify(Notice{Kind: NoticeUpgradeAdvisory, Message: advisory})
	}
	return false, nil
}

func (d *Dispatcher) applyBoard(msg *protocol.Message) (bool, error) {
	var data protocol.BoardCardsData
	if err := msg.Decode(&data); err != nil {
		return true, d.violation("bad board cards: %v", err)
	}

	cards, err := deck.ParseEach(data.Cards)
	if err != nil {
		return true, d.violation("bad board cards: %v", err)
	}

	var street game.Street
	switch msg.Type {
	case protocol.TypeFlop:
		street = game.Flop
	case protocol.TypeTurnCard:
		street = game.Turn
	case protocol.TypeRiverCard:
		street = game.River
	}

	if err := d.table.ApplyBoard(street, cards); err != nil {
		return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
	}

	d.notify(Notice{Kind: NoticeTableChanged})
	return false, nil
}

func (d *Dispatcher) applyAction(msg *protocol.Message) (bool, error) {
	var data protocol.SeatActionData
	if err := msg.Decode(&data); err != nil {
		return true, d.violation("bad action: %v", err)
	}

	var kind game.ActionKind
	switch msg.Type {
	case protocol.TypePlayerFolded:
		kind = game.Fold
	case protocol.TypePlayerChecked:
		kind = game.Check
	case protocol.TypePlayerCalled:
		kind = game.Call
	case protocol.TypePlayerBet:
		kind = game.Bet
	case protocol.TypePlayerRaised:
		kind = game.Raise
	case protocol.TypePlayerAllIn:
		kind = game.AllIn
	}

	// an action from any source cancels the seat's countdown
	d.timer.Cancel(data.Seat)

	if err := d.table.ApplyAction(data.Seat, game.Action{Kind: kind, Amount: data.Amount}); err != nil {
		return true, d.fatal(fmt.Errorf("%w: %v", ErrProtocolViolation, err))
	}

	d.notify(Notice{Kind: NoticeTableChanged, Seat: data.Seat, Amount: data.Amount})
	return false, nil
}

// applyTurnExpired handles the synthetic local timeout. The table is never
// mutated here: the default action is only rendered as imminent, and for
// the local seat submitted to the server, whose echo applies it.
func (d *Dispatcher) applyTurnExpired(seat int) {
	if d.table.Acting != seat {
		return // an action raced the expiry
	}

	d.notify(Notice{Kind: NoticeTurnExpired, Seat: seat})

	if !d.autoAct || d.out == nil || seat != d.table.LocalSeat {
		return
	}

	kind := game.Check
	if s, err := d.table.SeatAt(seat); err == nil && d.table.CurrentBet > s.Committed {
		kind = game.Fold
	}

	msg, err := protocol.NewMessage(protocol.TypeSubmitAction, protocol.SubmitActionData{Kind: kind.String()})
	if err != nil {
		return
	}
	if err := d.out.Send(msg); err != nil {
		d.logger.Warn("failed to submit default action", "error", err)
		return
	}
	d.logger.Info("submitted default action on timeout", "seat", seat, "kind", kind)
}

// describeShown names the best hand a shown holding makes with the board
func (d *Dispatcher) describeShown(hole []deck.Card) string {
	cards := append(append([]deck.Card(nil), hole...), d.table.Board...)
	strength, err := evaluator.Evaluate(cards)
	if err != nil {
		return ""
	}
	return strength.Describe()
}

func (d *Dispatcher) applySnapshot(msg *protocol.Message) (bool, error) {
	var data protocol.TableSnapshotData
	if err := msg.Decode(&data); err != nil {
		return true, d.violation("bad snapshot: %v", err)
	}

	snap, err := snapshotFromWire(data)
	if err != nil {
		return true, d.violation("bad snapshot: %v", err)
	}

	d.timer.Stop()
	d.table.ApplySnapshot(snap)

	for _, s := range data.Seats {
		if s.Name == d.localName {
			d.table.LocalSeat = s.Seat
		}
	}

	d.notify(Notice{Kind: NoticeTableChanged})
	return false, nil
}

// snapshotFromWire converts the wire snapshot into table state
func snapshotFromWire(data protocol.TableSnapshotData) (game.Snapshot, error) {
	street, err := game.ParseStreet(data.Round)
	if err != nil {
		return game.Snapshot{}, err
	}

	board, err := deck.ParseEach(data.Board)
	if err != nil {
		return game.Snapshot{}, err
	}

	seats := make([]game.Seat, len(data.Seats))
	for i, s := range data.Seats {
		status, err := game.ParseSeatStatus(s.Status)
		if err != nil {
			return game.Snapshot{}, err
		}
		hole, err := deck.ParseEach(s.HoleCards)
		if err != nil {
			return game.Snapshot{}, err
		}
		seats[i] = game.Seat{
			Index:     s.Seat,
			Name:      s.Name,
			Stack:     s.Stack,
			Status:    status,
			Committed: s.Committed,
			Total:     s.TotalCommitted,
			HoleCards: hole,
		}
	}

	pots := make([]game.Pot, len(data.Pots))
	for i, p := range data.Pots {
		pots[i] = game.Pot{Amount: p.Amount, Eligible: p.Eligible}
	}

	return game.Snapshot{
		Hand:           data.Hand,
		Street:         street,
		Board:          board,
		Dealer:         data.Dealer,
		SmallBlindSeat: data.SmallBlindSeat,
		BigBlindSeat:   data.BigBlindSeat,
		Acting:         data.ActingSeat,
		BlindLevel:     data.BlindLevel.Level,
		SmallBlind:     data.BlindLevel.Small,
		BigBlind:       data.BlindLevel.Big,
		Seats:          seats,
		Pots:           pots,
	}, nil
}
