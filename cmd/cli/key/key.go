// Package key holds the CLI commands that manage the generative API key.
package key

import (
	"fmt"

	"github.com/ruliana/technoir-transmission-generator/cmd/cli/clienv"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "key",
	Title: "API key operations",
}

var Set = &cobra.Command{
	Use:     "key-set [key]",
	GroupID: "key",
	Short:   "Store the generative API key",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		creds, err := clienv.Credentials()
		if err != nil {
			return err
		}
		if err = creds.Set(args[0]); err != nil {
			return err
		}
		fmt.Println("API key stored.")
		return nil
	},
}

var Clear = &cobra.Command{
	Use:     "key-clear",
	GroupID: "key",
	Short:   "Remove the stored API key",
	RunE: func(_ *cobra.Command, _ []string) error {
		creds, err := clienv.Credentials()
		if err != nil {
			return err
		}
		if err = creds.Clear(); err != nil {
			return err
		}
		fmt.Println("API key cleared.")
		return nil
	},
}

var Status = &cobra.Command{
	Use:     "key-status",
	GroupID: "key",
	Short:   "Report whether an API key is stored",
	RunE: func(_ *cobra.Command, _ []string) error {
		creds, err := clienv.Credentials()
		if err != nil {
			return err
		}
		stored, err := creds.Get()
		if err != nil {
			return err
		}
		if stored == "" {
			fmt.Println("No API key stored.")
		} else {
			fmt.Println("An API key is stored.")
		}
		return nil
	},
}
