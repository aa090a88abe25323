// Package archive holds the CLI commands that talk to the shared archive.
package archive

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ruliana/technoir-transmission-generator/cmd/cli/clienv"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "archive",
	Title: "Archive operations",
}

func init() {
	Push.Flags().String("credential", "", "archive upload credential, defaults to TECHNOIR_ARCHIVE_CREDENTIAL")
}

var List = &cobra.Command{
	Use:     "archive-ls",
	GroupID: "archive",
	Short:   "List archived transmissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := clienv.Logger()
		client, err := clienv.ArchiveClient(logger)
		if err != nil {
			return err
		}

		entries, err := client.Manifest(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("The archive is empty.")
			return nil
		}
		for _, entry := range entries {
			fmt.Printf("%s\t%s\t%s\n", entry.Filename, entry.CreatedAt.Format("2006-01-02"), entry.Title)
		}
		return nil
	},
}

var Pull = &cobra.Command{
	Use:     "pull [filename]",
	GroupID: "archive",
	Short:   "Copy an archived transmission into the local store",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := clienv.Logger()
		client, err := clienv.ArchiveClient(logger)
		if err != nil {
			return err
		}
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		tx, err := client.Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err = repo.Save(cmd.Context(), tx); err != nil {
			return err
		}
		fmt.Printf("Pulled transmission %d: %s\n", tx.ID, tx.Title)
		return nil
	},
}

var Push = &cobra.Command{
	Use:     "push [id]",
	GroupID: "archive",
	Short:   "Publish a local transmission to the archive",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transmission id %q", args[0])
		}

		credential, err := cmd.Flags().GetString("credential")
		if err != nil {
			return err
		}
		if credential == "" {
			credential = os.Getenv("TECHNOIR_ARCHIVE_CREDENTIAL")
		}

		logger := clienv.Logger()
		client, err := clienv.ArchiveClient(logger)
		if err != nil {
			return err
		}
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		tx, err := repo.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err = client.Upload(cmd.Context(), tx, credential); err != nil {
			return err
		}
		fmt.Printf("Pushed transmission %d to the archive.\n", tx.ID)
		return nil
	},
}
