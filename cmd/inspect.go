package cmd

import (
	"context"
	"fmt"
	"strings"

	"db2graph/internal/database"
	"db2graph/internal/logger"
	"db2graph/internal/mapping"
	"db2graph/internal/metadata"
	"db2graph/internal/schema"

	"github.com/spf13/cobra"
)

var (
	startTable    string
	endTable      string
	bridgeTable   string
	resourcesPath string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the graph model inferred for two tables without exporting anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		conn, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer conn.db.Close()

		export, resources, err := inferResources(ctx, conn, settings)
		if err != nil {
			return err
		}

		fmt.Printf("🔍 Analysis Results (%s):\n", conn.schema)
		for i, t := range export.Tables() {
			fmt.Printf("[%02d] %s (Dependencies: %v)\n", i+1, t.Name(), t.Dependencies())
		}
		for _, j := range export.Joins() {
			fmt.Printf("     join   %s\n", j)
		}
		for _, jt := range export.JoinTables() {
			fmt.Printf("     bridge %s\n", jt)
		}

		fmt.Println("\n📄 Resources:")
		for _, r := range resources {
			fmt.Printf("%-12s %-20s %s\n", r.Kind, r.Name, r.GraphName)
			fmt.Printf("    └ SELECT %s\n", strings.Join(r.Mappings.AliasedColumns(), ", "))
			fmt.Printf("    └ %s\n", strings.Join(r.Mappings.Headers(), settings.Formatting.DelimiterArg()))
		}

		if resourcesPath != "" {
			if err := mapping.WriteResources(resourcesPath, mapping.NewResourceFile(export, resources)); err != nil {
				return err
			}
			fmt.Println("Resources written to", resourcesPath)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(inspectCmd)

	addTableFlags(inspectCmd)
	addMappingFlags(inspectCmd)
	inspectCmd.Flags().StringVarP(&resourcesPath, "output", "o", "", "write the inferred resources to this JSON file")
}

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startTable, "start", "", "start table of the relationship ([schema.]table)")
	cmd.Flags().StringVar(&endTable, "end", "", "end table of the relationship ([schema.]table)")
	cmd.Flags().StringVar(&bridgeTable, "bridge", "", "bridge table joining start and end, discovered when empty")
}

// inferResources runs inspection, join detection and mapping for --start/--end.
func inferResources(ctx context.Context, conn *connection, settings *Settings) (*metadata.SchemaExport, []mapping.Resource, error) {
	if startTable == "" || endTable == "" {
		return nil, nil, fmt.Errorf("--start and --end are required")
	}

	client := database.NewSQLClient(conn.db, conn.dialect, conn.schema)
	inspector := schema.NewInspector(client, conn.dialect, conn.schema, settings.TinyInt)
	detector := schema.NewJoinDetector(inspector)

	var bridge metadata.TableName
	if bridgeTable != "" {
		bridge = metadata.NewTableName(bridgeTable)
	}

	logger.Infof("Analyzing %s -> %s", startTable, endTable)
	export, err := detector.Detect(ctx, metadata.NewTableName(startTable), metadata.NewTableName(endTable), bridge)
	if err != nil {
		return nil, nil, err
	}

	mapper := mapping.NewMapper(mapping.Options{
		IDSpaces:          settings.IDSpaces,
		IncludeBridgeData: settings.IncludeBridgeData,
	})
	resources, err := mapper.Map(export)
	if err != nil {
		return nil, nil, err
	}
	return export, resources, nil
}
