package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suderio/dicebot/internal/parser"
)

var commandSummaries = map[string]string{
	"roll":       "Rolls a dice expression (e.g., 2d6+3, 1d20+str adv), manages saved rolls or shows another character's.",
	"var":        "Manages the integer variables of your character.",
	"iam":        "Creates your character or renames it.",
	"whoami":     "Shows your character.",
	"history":    "Lists your latest rolls on this chat.",
	"initiative": "Rolls your initiative and keeps the turn order of this chat, highest first.",
	"help":       "Shows available commands or detailed info on a specific one.",
}

const operatorHelp = `Operators, loosest first:
 + -        add, subtract
 * / // %   multiply, divide, floor divide, modulo
 -x ~x      negate
 +x         unchanged
 !x         ability modifier of a score x
 ^          power
 > <        keep the larger / smaller side
 d g        roll dice (NdM), g rerolls 1s and 2s once`

// ExecuteHelp provides guidance on command usage
func ExecuteHelp(cmd *parser.HelpCmd) (string, error) {
	if cmd.Command != "" {
		name := strings.ToLower(cmd.Command)
		switch name {
		case "r":
			name = "roll"
		case "init":
			name = "initiative"
		}
		usage, ok := parser.Usage[name]
		if !ok {
			return "", fmt.Errorf("Unknown command: %s", cmd.Command)
		}
		msg := fmt.Sprintf("Command: %s\nUsage: %s\nSummary: %s", name, usage, commandSummaries[name])
		if name == "roll" {
			msg += "\n" + operatorHelp
		}
		return msg, nil
	}

	names := make([]string, 0, len(parser.Usage))
	for k := range parser.Usage {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, k := range names {
		sb.WriteString(fmt.Sprintf(" - %s: %s\n", k, commandSummaries[k]))
	}
	sb.WriteString("\nUse 'help <command>' for details.")
	return sb.String(), nil
}
