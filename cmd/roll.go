package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/roll"
)

var rollCmd = &cobra.Command{
	Use:   "roll <expression>",
	Short: "Roll a dice expression",
	Long: `Solves a dice expression and prints every die rolled.
Examples:
	dicebot roll 2d6+3
	dicebot roll "1d20 + str" --adv
	dicebot roll 4d6g1 --character Paulo`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, _ := cmd.Flags().GetBool("adv")
		disadv, _ := cmd.Flags().GetBool("disadv")
		name, _ := cmd.Flags().GetString("character")
		if adv && disadv {
			return errors.New("--adv and --disadv are mutually exclusive")
		}

		expression := strings.Join(args, " ")
		switch {
		case adv:
			expression += " adv"
		case disadv:
			expression += " disadv"
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		req := roll.Request{Server: localServer, User: localUser(), Expression: expression}
		if name != "" {
			c, err := a.chars.ByName(cmd.Context(), localServer, name)
			if errors.Is(err, character.ErrNotFound) {
				return fmt.Errorf("no character named %s, import one with: dicebot character import", name)
			}
			if err != nil {
				return err
			}
			req.Character = &c
		}

		res, err := a.roller.Roll(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rollCmd)
	rollCmd.Flags().Bool("adv", false, "roll lone d20s with advantage")
	rollCmd.Flags().Bool("disadv", false, "roll lone d20s with disadvantage")
	rollCmd.Flags().StringP("character", "c", "", "use the saved rolls and variables of a local character")
}
