package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"soul-harvest/internal/economy"
	"soul-harvest/internal/game"
)

var (
	ErrEmpty       = errors.New("empty command")
	ErrUnknown     = errors.New("unknown command")
	ErrUsage       = errors.New("bad arguments")
	ErrRateLimited = errors.New("rate limited")
)

// CommandType for routing
type CommandType int

const (
	CmdUnknown CommandType = iota
	CmdPause
	CmdSpawn
	CmdUpgrade
	CmdArea
	CmdClear
	CmdStats
	CmdHelp
)

// SupportedCommands maps command words to types
var SupportedCommands = map[string]CommandType{
	// Pause variants
	"pause":  CmdPause,
	"p":      CmdPause,
	"resume": CmdPause,

	// Spawn variants
	"spawn":  CmdSpawn,
	"zombie": CmdSpawn,
	"z":      CmdSpawn,

	// Upgrade variants
	"upgrade": CmdUpgrade,
	"buy":     CmdUpgrade,
	"u":       CmdUpgrade,

	// Area variants
	"area":   CmdArea,
	"go":     CmdArea,
	"travel": CmdArea,

	// Clear variants
	"clear": CmdClear,
	"cls":   CmdClear,

	// Stats variants
	"stats":  CmdStats,
	"score":  CmdStats,
	"status": CmdStats,

	// Help variants
	"help":     CmdHelp,
	"commands": CmdHelp,
	"?":        CmdHelp,
}

// UpgradeAliases maps upgrade names to canonical kinds
var UpgradeAliases = map[string]string{
	economy.UpgradeZombieSpeed:    economy.UpgradeZombieSpeed,
	"speed":                       economy.UpgradeZombieSpeed,
	"fast":                        economy.UpgradeZombieSpeed,
	economy.UpgradeZombieCapacity: economy.UpgradeZombieCapacity,
	"capacity":                    economy.UpgradeZombieCapacity,
	"cap":                         economy.UpgradeZombieCapacity,
	"max":                         economy.UpgradeZombieCapacity,
}

// Usage is the help text shown to clients.
const Usage = `commands:
  pause                toggle pause
  spawn X Y            spawn a zombie at X,Y
  upgrade speed|cap    buy one upgrade level
  area ID              travel to an unlocked area
  clear                remove every zombie
  stats                souls, defeats and area`

// Request is one parsed text command.
type Request struct {
	Type    CommandType
	Name    string   // Command word as typed, lowercased
	Args    []string // Arguments after the command
	Command game.Command
}

// GetCommandType returns the command type for a word (case-insensitive)
func GetCommandType(word string) CommandType {
	if t, ok := SupportedCommands[strings.ToLower(word)]; ok {
		return t
	}
	return CmdUnknown
}

// GetUpgradeKind normalizes an upgrade name to its canonical kind
func GetUpgradeKind(name string) (string, bool) {
	kind, ok := UpgradeAliases[strings.ToLower(name)]
	return kind, ok
}

// Parse turns one line of text into a Request. A leading "!" or "/" is
// accepted so chat-style input works unchanged.
func Parse(text string) (Request, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "!/")
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return Request{}, ErrEmpty
	}

	req := Request{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
	req.Type = GetCommandType(req.Name)

	switch req.Type {
	case CmdPause:
		req.Command = game.Command{Kind: game.CmdTogglePause}
	case CmdSpawn:
		if len(req.Args) != 2 {
			return req, fmt.Errorf("%w: usage: spawn X Y", ErrUsage)
		}
		x, errX := strconv.ParseFloat(req.Args[0], 64)
		y, errY := strconv.ParseFloat(req.Args[1], 64)
		if errX != nil || errY != nil {
			return req, fmt.Errorf("%w: spawn wants numbers, got %q %q", ErrUsage, req.Args[0], req.Args[1])
		}
		req.Command = game.Command{Kind: game.CmdSpawnZombie, Position: game.Vec(x, y)}
	case CmdUpgrade:
		if len(req.Args) != 1 {
			return req, fmt.Errorf("%w: usage: upgrade speed|cap", ErrUsage)
		}
		kind, ok := GetUpgradeKind(req.Args[0])
		if !ok {
			return req, fmt.Errorf("%w: unknown upgrade %q", ErrUsage, req.Args[0])
		}
		req.Command = game.Command{Kind: game.CmdPurchaseUpgrade, Upgrade: kind}
	case CmdArea:
		if len(req.Args) != 1 {
			return req, fmt.Errorf("%w: usage: area ID", ErrUsage)
		}
		id, err := strconv.Atoi(req.Args[0])
		if err != nil {
			return req, fmt.Errorf("%w: area wants a number, got %q", ErrUsage, req.Args[0])
		}
		req.Command = game.Command{Kind: game.CmdSetArea, Area: id}
	case CmdClear:
		req.Command = game.Command{Kind: game.CmdClearZombies}
	case CmdStats, CmdHelp:
		// Answered locally
	default:
		return req, fmt.Errorf("%w: %q", ErrUnknown, req.Name)
	}
	return req, nil
}

// Local reports whether the request is answered without the engine.
func (r Request) Local() bool {
	return r.Type == CmdStats || r.Type == CmdHelp
}
