// Package tx holds the CLI commands that create and manage transmissions
// in the local store.
package tx

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ruliana/technoir-transmission-generator/cmd/cli/clienv"
	"github.com/ruliana/technoir-transmission-generator/internal/bundle"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/pipeline"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "tx",
	Title: "Transmission operations",
}

func init() {
	Export.Flags().String("out", "", "path to the exported bundle, defaults to transmission-<id>.json.gz")
}

var Generate = &cobra.Command{
	Use:     "generate [theme]",
	GroupID: "tx",
	Short:   "Generate a transmission",
	Long: `Generates a complete transmission from a theme: title, setting summary,
exposition, 36 leads, and a dossier with portrait for every lead. Leads
whose dossier fails to generate are kept without one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := clienv.Logger()
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		orchestrator, err := clienv.NewOrchestrator(logger)
		if err != nil {
			return err
		}

		theme := strings.Join(args, " ")
		tx, err := orchestrator.GenerateFull(cmd.Context(), theme, pipeline.Events{
			Progress: func(message string) {
				fmt.Println(message)
			},
		})
		if err != nil {
			return err
		}

		if err = repo.Save(cmd.Context(), tx); err != nil {
			return err
		}

		fmt.Printf("Saved transmission %d: %s\n", tx.ID, tx.Title)
		return nil
	},
}

var List = &cobra.Command{
	Use:     "ls",
	GroupID: "tx",
	Short:   "List stored transmissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := clienv.Logger()
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		transmissions, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(transmissions) == 0 {
			fmt.Println("No transmissions stored.")
			return nil
		}
		for _, tx := range transmissions {
			fmt.Printf("%d\t%s\t%s\n", tx.ID, tx.CreatedAt.Format("2006-01-02 15:04"), tx.Title)
		}
		return nil
	},
}

var Show = &cobra.Command{
	Use:     "show [id]",
	GroupID: "tx",
	Short:   "Print one transmission",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transmission id %q", args[0])
		}

		logger := clienv.Logger()
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		tx, err := repo.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		printTransmission(tx)
		return nil
	},
}

var Delete = &cobra.Command{
	Use:     "rm [id]",
	GroupID: "tx",
	Short:   "Delete a transmission",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transmission id %q", args[0])
		}

		logger := clienv.Logger()
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		if err = repo.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted transmission %d.\n", id)
		return nil
	},
}

var Export = &cobra.Command{
	Use:     "export [id]",
	GroupID: "tx",
	Short:   "Export a transmission as a bundle file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transmission id %q", args[0])
		}

		logger := clienv.Logger()
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		tx, err := repo.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		if outPath == "" {
			outPath = fmt.Sprintf("transmission-%d.json.gz", tx.ID)
		}

		file, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()

		if err = bundle.Export(tx, file); err != nil {
			return err
		}
		fmt.Printf("Exported transmission %d to %s.\n", tx.ID, outPath)
		return nil
	},
}

var Import = &cobra.Command{
	Use:     "import [file]",
	GroupID: "tx",
	Short:   "Import a bundle file into the local store",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()

		tx, err := bundle.Import(file)
		if err != nil {
			return err
		}

		logger := clienv.Logger()
		repo, closeRepo, err := clienv.OpenRepo(logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		if err = repo.Save(cmd.Context(), tx); err != nil {
			return err
		}
		fmt.Printf("Imported transmission %d: %s\n", tx.ID, tx.Title)
		return nil
	},
}

func printTransmission(tx *models.Transmission) {
	fmt.Printf("%s (%d)\n", tx.Title, tx.ID)
	fmt.Println(tx.SettingSummary)
	fmt.Println()
	fmt.Printf("Technology: %s\n", tx.Exposition.Technology)
	fmt.Printf("Society: %s\n", tx.Exposition.Society)
	fmt.Printf("Environment: %s\n", tx.Exposition.Environment)

	for _, category := range models.Categories {
		var printed bool
		for _, lead := range tx.Leads {
			if lead.Category != category {
				continue
			}
			if !printed {
				fmt.Printf("\n%s\n", category)
				printed = true
			}
			printLead(lead)
		}
	}
	for _, lead := range tx.Leads {
		if !models.ValidCategory(lead.Category) {
			printLead(lead)
		}
	}
}

func printLead(lead models.Lead) {
	marker := " "
	if lead.Dossier != nil {
		marker = "*"
	}
	fmt.Printf("  %s %s: %s\n", marker, lead.Name, lead.Description)
	if lead.Dossier != nil {
		fmt.Printf("      sight: %s | sound: %s | smell: %s | vibe: %s\n",
			lead.Dossier.Sensory.Sight, lead.Dossier.Sensory.Sound,
			lead.Dossier.Sensory.Smell, lead.Dossier.Sensory.Vibe)
		fmt.Printf("      %s\n", lead.Dossier.Description)
	}
}
