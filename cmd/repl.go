/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suderio/dicebot/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive REPL shell",
	Long: `Starts the read-eval-print loop for rolling dice and managing your local character.
Usage:
	> iam Paulo
	> var set str 3
	> roll add sword 1d20+str
	> roll sword adv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		a, err := openApp()
		if err != nil {
			return fmt.Errorf("failed to open dicebot stores: %w", err)
		}
		defer a.Close()

		from := session.Sender{Server: localServer, User: localUser()}
		if plain {
			return runPlainREPL(cmd.Context(), a.session, from, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		return RunTUI(cmd.Context(), a, from)
	},
}

// runPlainREPL reads one command per line, for pipes and dumb terminals.
func runPlainREPL(ctx context.Context, s *session.Session, from session.Sender, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		if line != "" {
			reply, err := s.Execute(ctx, from, line)
			if err != nil {
				fmt.Fprintf(out, "%s\n", errorStyle.Render("Error: "+err.Error()))
			} else {
				fmt.Fprintln(out, reply)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().Bool("plain", false, "read commands line by line instead of starting the full screen UI")
}
