package handlers

import (
	"errors"
	"strconv"
	"strings"
)

var ErrForbidden = errors.New("game belongs to another player")

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0,
	"a": 1,
	"r": 0,
}

type command struct {
	name   string
	number int
}

func parseCommand(s string) (command, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return command{}, errors.New("empty command")
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return command{}, errors.New("unknown command")
	}
	if nargs != len(parts)-1 {
		return command{}, errors.New("invalid number of arguments")
	}
	c := command{name: parts[0]}
	if c.name == "a" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return command{}, errors.New("argument must be an int")
		}
		c.number = n
	}
	return c, nil
}

// parseCommands splits a message into one command per non-blank line.
func parseCommands(message string) ([]command, error) {
	var commands []command
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := parseCommand(line)
		if err != nil {
			return nil, err
		}
		commands = append(commands, c)
	}
	return commands, nil
}
