// Package gesture classifies pose snapshots into directional game commands.
package gesture

import (
	"fmt"

	"github.com/ayusman/posecontrol/internal/zone"
)

// Command is a discrete directional signal sent to the game.
type Command string

const (
	MoveUp    Command = "moveUp"
	MoveDown  Command = "moveDown"
	MoveLeft  Command = "moveLeft"
	MoveRight Command = "moveRight"
)

// Commands lists every command.
var Commands = []Command{MoveUp, MoveDown, MoveLeft, MoveRight}

// ParseCommand maps a wire name such as "moveUp" to a Command.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q", s)
}

func (c Command) String() string { return string(c) }

// Key returns the arrow key a command presses.
func (c Command) Key() string {
	switch c {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	}
	return ""
}

// Role returns the zone whose occupation triggers c.
func (c Command) Role() zone.Role {
	switch c {
	case MoveUp:
		return zone.RoleHands
	case MoveDown:
		return zone.RoleShoulders
	case MoveLeft:
		return zone.RoleLeftShoulder
	case MoveRight:
		return zone.RoleRightShoulder
	}
	return ""
}
