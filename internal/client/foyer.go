package client

import (
	"sort"

	"github.com/charmbracelet/log"
)

// GameType enumerates the kinds of games the foyer can list
type GameType int

const (
	Cash GameType = iota
	Tournament
	SitAndGo
)

// String returns the string representation of a game type
func (g GameType) String() string {
	switch g {
	case Cash:
		return "cash"
	case Tournament:
		return "tournament"
	case SitAndGo:
		return "sitandgo"
	default:
		return "unknown"
	}
}

// ParseGameType parses the wire name of a game type. Unknown values fall
// back to Cash rather than failing; the foyer is display-only.
func ParseGameType(s string) GameType {
	switch s {
	case "tournament":
		return Tournament
	case "sitandgo":
		return SitAndGo
	default:
		return Cash
	}
}

// GameState enumerates lobby game lifecycle states
type GameState int

const (
	Waiting GameState = iota
	Started
	Ended
)

// String returns the string representation of a game state
func (g GameState) String() string {
	switch g {
	case Waiting:
		return "waiting"
	case Started:
		return "started"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// ParseGameState parses the wire name of a game state
func ParseGameState(s string) GameState {
	switch s {
	case "started":
		return Started
	case "ended":
		return Ended
	default:
		return Waiting
	}
}

// BlindSchedule is a game's blind escalation configuration
type BlindSchedule struct {
	Start         int
	RaiseFactor   float64
	RaiseInterval int // seconds between raises
}

// Game is one foyer entry
type Game struct {
	ID           int
	Name         string
	Type         GameType
	Mode         string
	State        GameState
	Players      int
	MaxPlayers   int
	TurnTimeout  int // seconds per decision
	InitialStake int
	Blinds       BlindSchedule
	Private      bool
	Password     string // remembered locally for rejoining; never sent by the server
}

// GameFilter is a pure view predicate over foyer entries. Filters never
// mutate the directory; a filtered-out game is still tracked.
type GameFilter func(Game) bool

// HideStarted filters out games already under way
func HideStarted(g Game) bool {
	return g.State == Waiting
}

// HidePrivate filters out password-protected games
func HidePrivate(g Game) bool {
	return !g.Private
}

// Foyer is the lobby directory: the games the server advertises and the
// players connected to it. Updated incrementally by the dispatcher.
type Foyer struct {
	logger  *log.Logger
	games   map[int]Game
	players map[string]string // player id -> name
}

// NewFoyer creates an empty foyer directory
func NewFoyer(logger *log.Logger) *Foyer {
	return &Foyer{
		logger:  logger.WithPrefix("foyer"),
		games:   make(map[int]Game),
		players: make(map[string]string),
	}
}

// Upsert adds or replaces a game entry. Duplicate ids replace in place;
// a locally remembered password survives server updates.
func (f *Foyer) Upsert(g Game) {
	if prev, ok := f.games[g.ID]; ok && g.Password == "" {
		g.Password = prev.Password
	}
	f.games[g.ID] = g
	f.logger.Debug("game listed", "id", g.ID, "name", g.Name, "state", g.State)
}

// Remove drops a game the server reports gone
func (f *Foyer) Remove(id int) {
	delete(f.games, id)
	f.logger.Debug("game removed", "id", id)
}

// Game looks up a single entry by id
func (f *Foyer) Game(id int) (Game, bool) {
	g, ok := f.games[id]
	return g, ok
}

// Games returns the entries passing every filter, ordered by id. Ordering
// beyond the server-assigned id is not meaningful.
func (f *Foyer) Games(filters ...GameFilter) []Game {
	out := make([]Game, 0, len(f.games))
outer:
	for _, g := range f.games {
		for _, keep := range filters {
			if !keep(g) {
				continue outer
			}
		}
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RememberPassword keeps a private game's password so a later rejoin can
// resubmit it without prompting again.
func (f *Foyer) RememberPassword(id int, password string) {
	if g, ok := f.games[id]; ok {
		g.Password = password
		f.games[id] = g
	}
}

// PlayerJoined records a connected player
func (f *Foyer) PlayerJoined(id, name string) {
	f.players[id] = name
}

// PlayerLeft removes a connected player
func (f *Foyer) PlayerLeft(id string) {
	delete(f.players, id)
}

// Players returns the connected player names, sorted
func (f *Foyer) Players() []string {
	out := make([]string, 0, len(f.players))
	for _, name := range f.players {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Counts returns the game and player totals for the summary line
func (f *Foyer) Counts() (games, players int) {
	return len(f.games), len(f.players)
}
