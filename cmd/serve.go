package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/dicebot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer dice commands on Telegram",
	Long: `Starts the Telegram long-polling bot. Register a token first with:
	dicebot bot telegram --token <token>

telegram_chat_id restricts the bot to one chat (0 answers every chat) and
telegram_users restricts it to a list of user ids.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString("telegram_token")
		if token == "" {
			return errors.New("no telegram token configured, run: dicebot bot telegram")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bot := telegram.NewBot(
			telegram.NewClient(token),
			viper.GetInt64("telegram_chat_id"),
			telegramUsers(),
			a.session,
			slog.Default(),
		)
		fmt.Fprintln(cmd.OutOrStdout(), "[Telegram Bot] Listening, press Ctrl+C to stop")
		if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func telegramUsers() []int64 {
	var users []int64
	for _, id := range viper.GetIntSlice("telegram_users") {
		users = append(users, int64(id))
	}
	return users
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int64("chat", 0, "only answer this Telegram chat id")
	_ = viper.BindPFlag("telegram_chat_id", serveCmd.Flags().Lookup("chat"))
}
