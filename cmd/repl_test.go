package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/data"
	"github.com/suderio/dicebot/internal/engine"
	"github.com/suderio/dicebot/internal/roll"
	"github.com/suderio/dicebot/internal/session"
)

func TestPlainREPL(t *testing.T) {
	chars, err := character.Open(filepath.Join(t.TempDir(), "dicebot.db"))
	require.NoError(t, err)
	defer chars.Close()

	svc := roll.NewService(roll.WithSheets(chars), roll.WithRand(engine.Sequence(6)))
	s := session.NewSession(chars, svc, nil, nil)

	in := strings.NewReader("iam Paulo\nvar set str 2\n\nroll 1d20+str\nroll 1d20+dex\nquit\nroll 1d4\n")
	var out bytes.Buffer
	err = runPlainREPL(context.Background(), s, session.Sender{Server: localServer, User: "me"}, in, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "You are now Paulo")
	assert.Contains(t, text, "Paulo rolled 8")
	assert.Contains(t, text, "could not find: dex")
	assert.NotContains(t, text, "1d4")
}

func TestValidateSheet(t *testing.T) {
	assert.NoError(t, validateSheet(&data.Sheet{
		Name:      "Paulo",
		Rolls:     map[string]string{"sword": "1d20+str"},
		Variables: map[string]int64{"str": 3},
	}))
	assert.Error(t, validateSheet(&data.Sheet{Name: "Paulo", Variables: map[string]int64{"d": 3}}))
	assert.Error(t, validateSheet(&data.Sheet{Name: "Paulo", Rolls: map[string]string{"great_axe": "2d6"}}))
}
