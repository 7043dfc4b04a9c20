package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	botToken  string
	botChatID int64
)

// botCmd represents the bot command
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Manage global bot configurations",
	Long: `Stores chat platform credentials in the dicebot config file so that
"dicebot serve" can answer roll commands without extra flags.`,
}

// telegramBotCmd represents the telegram subcommand of bot
var telegramBotCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Register a global Telegram bot",
	Long: `Saves a Telegram bot token, and optionally the one chat the bot answers in,
to the dicebot config file. Without --token the command walks through creating a
bot with @BotFather and reads the token from stdin.

Once registered, "dicebot serve" polls Telegram and answers /roll, /var, /iam,
/initiative and the other dicebot commands in every chat the bot is added to,
treating each chat as its own table.`,
	Run: func(cmd *cobra.Command, args []string) {
		if botToken == "" {
			fmt.Println("---")
			fmt.Println("Create your Telegram Bot & Get Token")
			fmt.Println("Open Telegram and search for the official @BotFather.")
			fmt.Println("Send the /newbot command and follow the prompts to name your bot and choose a unique username.")
			fmt.Println("BotFather will provide you with an HTTP API token. Store this token securely, as it is required for all API interactions. We will need it to configure dicebot.")
			fmt.Println("For testing in a group, add the bot to a group and ensure its privacy settings allow it to read all messages (this can be configured in BotFather's settings).")
			fmt.Println("---")
			fmt.Print("token: ")

			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				botToken = strings.TrimSpace(scanner.Text())
			}
		}

		if botToken != "" {
			viper.Set("telegram_token", botToken)
			if botChatID != 0 {
				viper.Set("telegram_chat_id", botChatID)
			}
			err := viper.WriteConfig()
			if err != nil {
				// If config file doesn't exist, WriteConfig typically fails.
				// For simplicity, we could try WriteConfigAs if we knew where to put it,
				// but Cobra's initConfig already sets up paths.
				err = viper.SafeWriteConfig()
				if err != nil {
					// Fallback: try to write to $HOME/.dicebot.yaml
					home, _ := os.UserHomeDir()
					err = viper.WriteConfigAs(filepath.Join(home, ".dicebot.yaml"))
				}
			}
			if err == nil {
				fmt.Println("Telegram bot token saved successfully. Start it with: dicebot serve")
			} else {
				fmt.Printf("Error saving configuration: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.AddCommand(telegramBotCmd)

	telegramBotCmd.Flags().StringVarP(&botToken, "token", "t", "", "Telegram bot API token")
	telegramBotCmd.Flags().Int64Var(&botChatID, "chat", 0, "only answer this chat id")
}
