package parser

import (
	"fmt"
	"strings"
)

// Usage lists the syntax of every command, keyed by its keyword.
var Usage = map[string]string{
	"roll":       "roll <expression> [adv|disadv] | roll add <name> <expression> | roll check <name> | roll list | roll remove <name> | roll inspect <character>",
	"var":        "var set <name> <integer> | var check <name> | var list | var remove <name>",
	"iam":        "iam <character name>",
	"whoami":     "whoami",
	"history":    "history [count]",
	"initiative": "initiative set <expression> | initiative check | initiative list | initiative remove | initiative removeall",
	"help":       "help [command]",
}

// MapError takes a raw input and a participle error, and returns a human-friendly guidance message.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("I wasn't able to understand your command")
	}

	cmd := strings.ToLower(strings.Fields(input)[0])
	switch cmd {
	case "r":
		cmd = "roll"
	case "init":
		cmd = "initiative"
	}
	if usage, ok := Usage[cmd]; ok {
		return fmt.Errorf("The command %s must be: %s", cmd, usage)
	}

	return fmt.Errorf("I wasn't able to understand your command")
}
