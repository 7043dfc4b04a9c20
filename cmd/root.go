/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dicebot",
	Short: "Dice expression roller for tabletop games",
	Long: `dicebot solves dice expressions such as 2d6+3, 1d20+str adv or 4d6>3d8.
Characters keep saved rolls and variables that can be used inside expressions.
Rolls can be made from the command line, an interactive REPL or a Telegram chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dicebot.yaml)")
	rootCmd.PersistentFlags().String("db_path", "", "SQLite database with characters, rolls and variables")
	rootCmd.PersistentFlags().String("history_path", "", "JSONL roll history (empty string disables it)")
	rootCmd.PersistentFlags().Int("max_dice", 0, "most dice a single NdM term may roll")
	rootCmd.PersistentFlags().String("log_level", "", "debug, info, warn or error")

	for _, key := range []string{"db_path", "history_path", "max_dice", "log_level"} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	viper.SetDefault("db_path", filepath.Join(home, ".dicebot", "dicebot.db"))
	viper.SetDefault("history_path", filepath.Join(home, ".dicebot", "history.jsonl"))
	viper.SetDefault("max_dice", 1000)
	viper.SetDefault("log_level", "info")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dicebot")
	}

	viper.SetEnvPrefix("DICEBOT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(viper.GetString("log_level")))); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", viper.GetString("log_level"), err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
