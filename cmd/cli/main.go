package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ruliana/technoir-transmission-generator/cmd/cli/archive"
	"github.com/ruliana/technoir-transmission-generator/cmd/cli/key"
	"github.com/ruliana/technoir-transmission-generator/cmd/cli/tx"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(tx.Group)
	rootCmd.AddCommand(tx.Generate, tx.List, tx.Show, tx.Delete, tx.Export, tx.Import)
	rootCmd.AddGroup(archive.Group)
	rootCmd.AddCommand(archive.List, archive.Pull, archive.Push)
	rootCmd.AddGroup(key.Group)
	rootCmd.AddCommand(key.Set, key.Clear, key.Status)
}

var rootCmd = &cobra.Command{
	Use:  "technoir-cli",
	Long: `Command line interface for the Technoir transmission generator`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
