package cmd

import (
	"fmt"

	"db2graph/internal/logger"
	"db2graph/internal/workspace"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanCmd = &cobra.Command{
	Use:     "clean",
	Short:   "Remove exported CSV run directories, and the destination store with --force",
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		csvRoot := viper.GetString("export.csv_directory")
		dest := viper.GetString("import.destination")
		force := viper.GetBool("import.force")

		removed, err := workspace.Clean(csvRoot, dest, force)
		for _, path := range removed {
			fmt.Println("Removed", path)
		}
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			logger.Infof("Nothing to clean in %s", csvRoot)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().String("csv-directory", "csv", "root directory of the csv-NNN run directories")
	cleanCmd.Flags().String("destination", "", "graph store directory to remove")
	cleanCmd.Flags().BoolP("force", "f", false, "also remove the destination store")
}
