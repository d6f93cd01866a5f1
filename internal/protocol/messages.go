package protocol

import "encoding/json"

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeLogin            MessageType = "login"
	TypeLogout           MessageType = "logout"
	TypeSubscribeFoyer   MessageType = "subscribe_foyer"
	TypeUnsubscribeFoyer MessageType = "unsubscribe_foyer"
	TypeCreateGame       MessageType = "create_game"
	TypeJoinTable        MessageType = "join_table"
	TypeSubmitAction     MessageType = "submit_action"

	// Server -> Client: handshake
	TypeWelcome MessageType = "welcome"

	// Server -> Client: foyer
	TypeGameListed   MessageType = "game_listed"
	TypeGameRemoved  MessageType = "game_removed"
	TypePlayerJoined MessageType = "player_joined"
	TypePlayerLeft   MessageType = "player_left"

	// Server -> Client: table lifecycle
	TypeGameStarted   MessageType = "game_started"
	TypeGameEnded     MessageType = "game_ended"
	TypeNewHand       MessageType = "new_hand"
	TypeBlindLevel    MessageType = "blind_level"
	TypeTableSnapshot MessageType = "table_snapshot"

	// Server -> Client: board
	TypeHoleCards MessageType = "hole_cards"
	TypeFlop      MessageType = "flop"
	TypeTurnCard  MessageType = "turn_card"
	TypeRiverCard MessageType = "river_card"

	// Server -> Client: actions
	TypePlayerFolded  MessageType = "player_folded"
	TypePlayerChecked MessageType = "player_checked"
	TypePlayerCalled  MessageType = "player_called"
	TypePlayerBet     MessageType = "player_bet"
	TypePlayerRaised  MessageType = "player_raised"
	TypePlayerAllIn   MessageType = "player_allin"
	TypeTurnStarted   MessageType = "turn_started"

	// Server -> Client: resolution
	TypePlayerShowed    MessageType = "player_showed"
	TypePotAwarded      MessageType = "pot_awarded"
	TypeOddChipsAwarded MessageType = "odd_chips_awarded"
	TypePlayerBroke     MessageType = "player_broke"

	// Server -> Client: faults
	TypeProtocolError    MessageType = "protocol_error"
	TypeConnectionClosed MessageType = "connection_closed"
	TypeError            MessageType = "error"
)

// Message is the wire envelope: a type tag plus a typed JSON payload.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps a payload in an envelope
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{Type: messageType, Data: dataBytes}, nil
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v interface{}) error {
	return json.Unmarshal(m.Data, v)
}

// Client -> Server payloads

type LoginData struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	ClientID string `json:"clientId,omitempty"` // set when reconnecting
}

type CreateGameData struct {
	Name          string  `json:"name"`
	GameType      string  `json:"gameType"` // cash, tournament, sitandgo
	MaxPlayers    int     `json:"maxPlayers"`
	TurnTimeout   int     `json:"turnTimeout"` // seconds
	InitialStake  int     `json:"initialStake"`
	BlindStart    int     `json:"blindStart"`
	RaiseFactor   float64 `json:"raiseFactor"`
	RaiseInterval int     `json:"raiseInterval"` // seconds between blind raises
	Private       bool    `json:"private,omitempty"`
	Password      string  `json:"password,omitempty"`
}

type JoinTableData struct {
	GameID   int    `json:"gameId"`
	Password string `json:"password,omitempty"`
}

type SubmitActionData struct {
	Kind   string `json:"kind"` // fold, check, call, bet, raise, allin
	Amount int    `json:"amount,omitempty"`
}

// Server -> Client payloads

type WelcomeData struct {
	ServerVersion    string `json:"serverVersion"`
	ClientID         string `json:"clientId"`
	MinClientVersion string `json:"minClientVersion,omitempty"`
	LatestClient     string `json:"latestClient,omitempty"` // newest released client, advisory only
}

type GameListedData struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	GameType      string  `json:"gameType"`
	Mode          string  `json:"mode"`
	State         string  `json:"state"` // waiting, started, ended
	Players       int     `json:"players"`
	MaxPlayers    int     `json:"maxPlayers"`
	TurnTimeout   int     `json:"turnTimeout"`
	InitialStake  int     `json:"initialStake"`
	BlindStart    int     `json:"blindStart"`
	RaiseFactor   float64 `json:"raiseFactor"`
	RaiseInterval int     `json:"raiseInterval"`
	Private       bool    `json:"private,omitempty"`
}

type GameRemovedData struct {
	ID int `json:"id"`
}

type PlayerInfoData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GameStartedData struct {
	GameID int            `json:"gameId"`
	Dealer int            `json:"dealer"`
	Seats  []SeatInfoData `json:"seats"`
}

type SeatInfoData struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Stack int    `json:"stack"`
}

type GameEndedData struct {
	GameID int `json:"gameId"`
}

type NewHandData struct {
	Hand           int `json:"hand"`
	Dealer         int `json:"dealer"`
	SmallBlindSeat int `json:"smallBlindSeat"`
	BigBlindSeat   int `json:"bigBlindSeat"`
}

type BlindLevelData struct {
	Level int `json:"level"`
	Small int `json:"small"`
	Big   int `json:"big"`
}

type HoleCardsData struct {
	Seat  int      `json:"seat"`
	Cards []string `json:"cards"`
}

type BoardCardsData struct {
	Cards []string `json:"cards"`
}

type SeatActionData struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount,omitempty"`
}

type TurnStartedData struct {
	Seat            int `json:"seat"`
	DeadlineSeconds int `json:"deadlineSeconds"`
}

type PlayerShowedData struct {
	Seat  int      `json:"seat"`
	Cards []string `json:"cards"`
}

type PotAwardedData struct {
	Pot    int `json:"pot"` // pot rank, 0 = main pot
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

type PlayerBrokeData struct {
	Seat int `json:"seat"`
}

type TableSnapshotData struct {
	Hand           int                `json:"hand"`
	Round          string             `json:"round"`
	Board          []string           `json:"board"`
	Dealer         int                `json:"dealer"`
	SmallBlindSeat int                `json:"smallBlindSeat"`
	BigBlindSeat   int                `json:"bigBlindSeat"`
	ActingSeat     int                `json:"actingSeat"` // -1 when nobody is to act
	BlindLevel     BlindLevelData     `json:"blindLevel"`
	Seats          []SeatSnapshotData `json:"seats"`
	Pots           []PotSnapshotData  `json:"pots"`
}

type SeatSnapshotData struct {
	Seat           int      `json:"seat"`
	Name           string   `json:"name"`
	Stack          int      `json:"stack"`
	Status         string   `json:"status"`
	Committed      int      `json:"committed"`      // this betting round
	TotalCommitted int      `json:"totalCommitted"` // whole hand, drives pot partitioning
	HoleCards      []string `json:"holeCards,omitempty"`
}

type PotSnapshotData struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

type ProtocolErrorData struct {
	Message string `json:"message"`
}

type ConnectionClosedData struct {
	Reason string `json:"reason,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
