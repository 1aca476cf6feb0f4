package menu

import "strings"

// Command is one entry of the main menu.
type Command int

const (
	CommandNew Command = iota + 1
	CommandInter
	CommandUpdate
	CommandFinal
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandNew:
		return "new"
	case CommandInter:
		return "inter"
	case CommandUpdate:
		return "update"
	case CommandFinal:
		return "final"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ParseCommand maps a menu answer (full word or its first letter, any case)
// to a Command.
func ParseCommand(input string) (Command, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "new", "n":
		return CommandNew, true
	case "inter", "i":
		return CommandInter, true
	case "update", "u":
		return CommandUpdate, true
	case "final", "f":
		return CommandFinal, true
	case "quit", "q", "exit":
		return CommandQuit, true
	default:
		return 0, false
	}
}
