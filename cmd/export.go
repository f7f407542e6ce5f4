package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"db2graph/internal/engine"
	"db2graph/internal/importer"
	"db2graph/internal/logger"
	"db2graph/internal/mapping"
	"db2graph/internal/workspace"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

const resourcesFileName = "resources.json"

var (
	csvResources string
	skipImport   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export two related tables to CSV and bulk load them into a graph store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		toolDir := settings.ImportTool
		if skipImport {
			toolDir = ""
		} else if toolDir == "" {
			return fmt.Errorf("--import-tool is required unless --skip-import is set")
		}

		ws, err := workspace.Prepare(workspace.Options{
			ImportToolDirectory: toolDir,
			Destination:         settings.Destination,
			CsvRoot:             settings.CsvDirectory,
			Force:               settings.Force,
		})
		if err != nil {
			return err
		}

		conn, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer conn.db.Close()

		// 1. Resources, inferred or reused from an earlier run
		var rf mapping.ResourceFile
		if csvResources != "" {
			if rf, err = mapping.ReadResources(csvResources); err != nil {
				return err
			}
			logger.Infof("Reusing %d resources of run %s", len(rf.Resources), rf.RunID)
		} else {
			export, resources, err := inferResources(ctx, conn, settings)
			if err != nil {
				return err
			}
			rf = mapping.NewResourceFile(export, resources)
		}
		if err := mapping.WriteResources(filepath.Join(ws.CsvDirectory, resourcesFileName), rf); err != nil {
			return err
		}

		exporter := engine.NewExporter(conn.db, conn.dialect, engine.Options{
			Directory:   ws.CsvDirectory,
			Formatting:  settings.Formatting,
			TinyInt:     settings.TinyInt,
			Limit:       settings.Limit,
			Concurrency: settings.Concurrency,
		})

		// 2. Setup Progress Bars
		bars := make(map[string]*uiprogress.Bar, len(rf.Resources))
		progress := uiprogress.New()
		for _, r := range rf.Resources {
			total, err := exporter.Count(ctx, r)
			if err != nil {
				return err
			}
			name := r.Name
			bar := progress.AddBar(max(total, 1)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return fmt.Sprintf("%-20s", name)
			})
			bars[name] = bar
		}

		// 3. Export
		logger.Infof("Exporting run %s to %s", rf.RunID, ws.CsvDirectory)
		start := time.Now()
		progress.Start()
		manifest, results, err := exporter.Export(ctx, rf, func(resource string) {
			if bar, ok := bars[resource]; ok {
				bar.Incr()
			}
		})
		progress.Stop()
		if err != nil {
			return err
		}

		// 4. Final Report
		printExportReport(results)
		logger.Infof("Export Done! Time Elapsed: %s", time.Since(start))

		if skipImport {
			fmt.Println("Import skipped, CSV files are in", ws.CsvDirectory)
			return nil
		}

		// 5. Import
		cfg, err := importer.NewConfig(toolDir, ws.Destination).
			Program(settings.ImportProgram).
			Formatting(settings.Formatting).
			IDType(settings.IDType).
			Timeout(settings.ImportTimeout).
			FromManifest(manifest).
			Build()
		if err != nil {
			return err
		}
		res, err := importer.Run(ctx, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Imported into %s in %s\n", ws.Destination, res.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)

	addTableFlags(exportCmd)
	addMappingFlags(exportCmd)
	exportCmd.Flags().StringVar(&csvResources, "csv-resources", "", "reuse the resources file of an earlier run instead of inspecting the schema")
	exportCmd.Flags().BoolVar(&skipImport, "skip-import", false, "only write the CSV files")
	exportCmd.Flags().String("csv-directory", "csv", "root directory of the csv-NNN run directories")
	exportCmd.Flags().Int("limit", 0, "rows exported per resource, 0 for all")
	exportCmd.Flags().Int("concurrency", 4, "resources exported at once")
	exportCmd.Flags().String("import-tool", "", "installation directory of the graph import tool")
	exportCmd.Flags().String("program", "neo4j-import", "import tool executable under <import-tool>/bin")
	exportCmd.Flags().String("destination", "", "graph store directory the import tool writes")
	exportCmd.Flags().String("id-type", "string", "id type passed to the import tool")
	exportCmd.Flags().Duration("import-timeout", time.Hour, "how long to wait for the import tool")
	exportCmd.Flags().BoolP("force", "f", false, "overwrite an existing destination")
}

func printExportReport(results []engine.ExportResult) {
	fmt.Println("\n📊 Summary Report:")
	total := 0
	for i, r := range results {
		icon := "✓"
		if r.Status != "OK" {
			icon = "!"
		}
		fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (Target: %d) - %s\n",
			icon, i+1, len(results), r.Resource, r.Actual, r.Target, r.Status)
		if r.ErrorMsg != "" {
			fmt.Printf("    └ Warning: %s\n", r.ErrorMsg)
		}
		total += r.Actual
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Rows: %d\n", total)
}
