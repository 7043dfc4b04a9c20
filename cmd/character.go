package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suderio/dicebot/internal/command"
	"github.com/suderio/dicebot/internal/data"
)

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Manage local characters",
}

var characterImportCmd = &cobra.Command{
	Use:   "import <sheet.yaml|name>",
	Short: "Import a YAML character sheet",
	Long: `Imports a character sheet with its saved rolls and variables.
The argument is either a path to a YAML file or a character name looked up as
characters/<name>.yaml inside the --data_dir directories.

	name: Paulo
	rolls:
	  sword: 1d20+str+prof
	variables:
	  str: 3
	  prof: 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDirs, _ := cmd.Flags().GetStringSlice("data_dir")
		server, _ := cmd.Flags().GetString("server")
		owner, _ := cmd.Flags().GetString("user")
		if owner == "" {
			owner = localUser()
		}

		sheet, err := loadSheet(args[0], dataDirs)
		if err != nil {
			return err
		}
		if err := validateSheet(sheet); err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.chars.Import(cmd.Context(), server, owner, sheet)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s with %d rolls and %d variables\n", c, len(sheet.Rolls), len(sheet.Variables))
		return nil
	},
}

func loadSheet(arg string, dataDirs []string) (*data.Sheet, error) {
	if _, err := os.Stat(arg); err == nil {
		return data.ReadSheet(arg)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return data.NewLoader(dataDirs).LoadSheet(arg)
}

func validateSheet(sheet *data.Sheet) error {
	for name := range sheet.Rolls {
		if err := command.ValidateName(name); err != nil {
			return fmt.Errorf("roll %w", err)
		}
	}
	for name := range sheet.Variables {
		if err := command.ValidateName(name); err != nil {
			return fmt.Errorf("variable %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(characterCmd)
	characterCmd.AddCommand(characterImportCmd)
	characterImportCmd.Flags().StringSliceP("data_dir", "d", []string{"."}, "directories searched for characters/<name>.yaml")
	characterImportCmd.Flags().String("server", localServer, "server (chat) the character belongs to")
	characterImportCmd.Flags().String("user", "", "owner of the character (default is the current user)")
}
