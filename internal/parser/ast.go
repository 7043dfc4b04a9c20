package parser

import (
	"strings"
)

// Command represents one line typed by a player
type Command struct {
	Roll       *RollCmd       `parser:"( @@"`
	Var        *VarCmd        `parser:"| @@"`
	Iam        *IamCmd        `parser:"| @@"`
	Whoami     *WhoamiCmd     `parser:"| @@"`
	History    *HistoryCmd    `parser:"| @@"`
	Initiative *InitiativeCmd `parser:"| @@"`
	Help       *HelpCmd       `parser:"| @@ )"`
}

// RollCmd rolls an expression or manages the saved rolls of a character
type RollCmd struct {
	Keyword string       `parser:"@(\"roll\"|\"Roll\"|\"ROLL\"|\"r\")"`
	Add     *SaveRollArg `parser:"( \"add\" @@"`
	Check   *NameArg     `parser:"| \"check\" @@"`
	List    bool         `parser:"| @\"list\""`
	Remove  *NameArg     `parser:"| \"remove\" @@"`
	Inspect []string     `parser:"| \"inspect\" @Word+"`
	Dice    []string     `parser:"| @Word+ )"`
}

// Expression rebuilds the dice expression. Words are joined by a single space,
// which the equation lexer ignores, so a trailing "adv" stays recognizable.
func (r *RollCmd) Expression() string {
	return strings.Join(r.Dice, " ")
}

// InspectedName joins the words of the character named by "roll inspect"
func (r *RollCmd) InspectedName() string {
	return strings.Join(r.Inspect, " ")
}

// SaveRollArg maps "roll add <name> <expression>"
type SaveRollArg struct {
	Name string   `parser:"@Word"`
	Dice []string `parser:"@Word+"`
}

func (a *SaveRollArg) Expression() string {
	return strings.Join(a.Dice, " ")
}

// NameArg is a single roll or variable name
type NameArg struct {
	Name string `parser:"@Word"`
}

// VarCmd manages the variables of a character
type VarCmd struct {
	Keyword string      `parser:"@(\"var\"|\"Var\"|\"VAR\")"`
	Set     *SetVarArg `parser:"( \"set\" @@"`
	Check   *NameArg   `parser:"| \"check\" @@"`
	List    bool       `parser:"| @\"list\""`
	Remove  *NameArg   `parser:"| \"remove\" @@ )"`
}

// SetVarArg maps "var set <name> <integer>"
type SetVarArg struct {
	Name  string `parser:"@Word"`
	Value int64  `parser:"@Word"`
}

// IamCmd names the character played by the sender
type IamCmd struct {
	Keyword string   `parser:"@(\"iam\"|\"Iam\"|\"IAM\")"`
	Name    []string `parser:"@Word+"`
}

// CharacterName joins the words of a multi-word name
func (c *IamCmd) CharacterName() string {
	return strings.Join(c.Name, " ")
}

// WhoamiCmd shows the character played by the sender
type WhoamiCmd struct {
	Keyword string `parser:"@(\"whoami\"|\"Whoami\"|\"WHOAMI\")"`
}

// HistoryCmd lists the latest rolls of the sender's character
type HistoryCmd struct {
	Keyword string `parser:"@(\"history\"|\"History\"|\"HISTORY\")"`
	Count   *int   `parser:"@Word?"`
}

// HelpCmd provides guidance on a command
type HelpCmd struct {
	Keyword string `parser:"@(\"help\"|\"Help\"|\"HELP\")"`
	Command string `parser:"@Word?"`
}

// InitiativeCmd manages the turn order of the current chat
type InitiativeCmd struct {
	Keyword   string   `parser:"@(\"initiative\"|\"Initiative\"|\"INITIATIVE\"|\"init\")"`
	Set       []string `parser:"( (\"set\"|\"add\"|\"update\"|\"roll\") @Word+"`
	Check     bool     `parser:"| @\"check\""`
	List      bool     `parser:"| @\"list\""`
	RemoveAll bool     `parser:"| @(\"removeall\"|\"deleteall\"|\"endcombat\")"`
	Remove    bool     `parser:"| @(\"remove\"|\"delete\") )"`
}

// Expression rebuilds the initiative roll
func (c *InitiativeCmd) Expression() string {
	return strings.Join(c.Set, " ")
}
