package cmd

import (
	"errors"
	"log/slog"
	"os/user"

	"github.com/spf13/viper"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/persistence"
	"github.com/suderio/dicebot/internal/roll"
	"github.com/suderio/dicebot/internal/session"
)

// localServer scopes characters created from the command line and the REPL.
const localServer = "local"

// app bundles the stores and services shared by the subcommands.
type app struct {
	chars   *character.Store
	history *persistence.Store
	roller  *roll.Service
	session *session.Session
}

func openApp() (*app, error) {
	chars, err := character.Open(viper.GetString("db_path"))
	if err != nil {
		return nil, err
	}

	a := &app{chars: chars}
	opts := []roll.Option{
		roll.WithSheets(chars),
		roll.WithMaxDice(viper.GetInt("max_dice")),
		roll.WithLogger(slog.Default()),
	}

	if path := viper.GetString("history_path"); path != "" {
		a.history, err = persistence.NewStore(path)
		if err != nil {
			_ = chars.Close()
			return nil, err
		}
		opts = append(opts, roll.WithHistory(a.history))
	}

	a.roller = roll.NewService(opts...)
	if a.history != nil {
		a.session = session.NewSession(chars, a.roller, a.history, slog.Default())
	} else {
		a.session = session.NewSession(chars, a.roller, nil, slog.Default())
	}
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	errs = append(errs, a.chars.Close())
	return errors.Join(errs...)
}

// localUser names the operating system user, who owns the local characters.
func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
