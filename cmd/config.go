package cmd

import (
	"fmt"
	"time"

	"db2graph/internal/mapping"
	"db2graph/internal/metadata"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// Settings is everything a migration run reads from flags, config and environment.
type Settings struct {
	CsvDirectory      string
	Limit             int
	Concurrency       int
	ImportTool        string
	ImportProgram     string
	Destination       string
	IDType            string
	ImportTimeout     time.Duration
	Force             bool
	Formatting        mapping.Formatting
	TinyInt           metadata.TinyIntResolver
	IDSpaces          bool
	IncludeBridgeData bool
}

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("export.csv_directory", "csv")
	viper.SetDefault("export.limit", 0)
	viper.SetDefault("export.concurrency", 4)
	viper.SetDefault("import.program", "neo4j-import")
	viper.SetDefault("import.id_type", "string")
	viper.SetDefault("import.timeout", time.Hour)
	viper.SetDefault("formatting.delimiter", ",")
	viper.SetDefault("formatting.quote", `"`)
	viper.SetDefault("mapping.tiny_int", "byte")
	viper.SetDefault("mapping.id_spaces", true)
	viper.SetDefault("mapping.include_bridge_data", false)
}

// loadSettings resolves Flag > import tool options file > config > default.
func loadSettings(cmd *cobra.Command) (*Settings, error) {
	delimiter := viper.GetString("formatting.delimiter")
	quote := viper.GetString("formatting.quote")

	if path := viper.GetString("import.options_file"); path != "" {
		opts, err := readImportToolOptions(path)
		if err != nil {
			return nil, err
		}
		if opts.IsSet("delimiter") && !flagChanged(cmd, "delimiter") {
			delimiter = opts.GetString("delimiter")
		}
		if opts.IsSet("quote") && !flagChanged(cmd, "quote") {
			quote = opts.GetString("quote")
		}
	}

	formatting, err := mapping.NewFormatting(delimiter, quote)
	if err != nil {
		return nil, err
	}
	tinyIntAs, err := metadata.ParseTinyIntAs(viper.GetString("mapping.tiny_int"))
	if err != nil {
		return nil, err
	}

	return &Settings{
		CsvDirectory:      viper.GetString("export.csv_directory"),
		Limit:             viper.GetInt("export.limit"),
		Concurrency:       viper.GetInt("export.concurrency"),
		ImportTool:        viper.GetString("import.tool_directory"),
		ImportProgram:     viper.GetString("import.program"),
		Destination:       viper.GetString("import.destination"),
		IDType:            viper.GetString("import.id_type"),
		ImportTimeout:     viper.GetDuration("import.timeout"),
		Force:             viper.GetBool("import.force"),
		Formatting:        formatting,
		TinyInt:           metadata.NewTinyIntResolver(tinyIntAs),
		IDSpaces:          viper.GetBool("mapping.id_spaces"),
		IncludeBridgeData: viper.GetBool("mapping.include_bridge_data"),
	}, nil
}

// readImportToolOptions loads the JSON or YAML file of import tool options with its own
// viper instance so it never leaks into the main config.
func readImportToolOptions(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read import tool options %s: %w", path, err)
	}
	return v, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// flagKeys maps command flags onto their config keys. Several commands declare the same
// flag, so binding happens in PreRunE for the command actually running.
var flagKeys = map[string]string{
	"csv-directory":       "export.csv_directory",
	"limit":               "export.limit",
	"concurrency":         "export.concurrency",
	"import-tool":         "import.tool_directory",
	"program":             "import.program",
	"destination":         "import.destination",
	"id-type":             "import.id_type",
	"import-timeout":      "import.timeout",
	"force":               "import.force",
	"import-tool-options": "import.options_file",
	"delimiter":           "formatting.delimiter",
	"quote":               "formatting.quote",
	"tiny-int":            "mapping.tiny_int",
	"id-spaces":           "mapping.id_spaces",
	"include-bridge-data": "mapping.include_bridge_data",
}

func bindFlags(cmd *cobra.Command, args []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func addMappingFlags(cmd *cobra.Command) {
	cmd.Flags().String("delimiter", ",", "CSV field delimiter, TAB for a tab")
	cmd.Flags().String("quote", `"`, "CSV quote character")
	cmd.Flags().String("tiny-int", "byte", "how tinyint columns are exported: byte or boolean")
	cmd.Flags().Bool("id-spaces", true, "give every node label its own ID space")
	cmd.Flags().Bool("include-bridge-data", false, "copy bridge table data columns onto relationships")
	cmd.Flags().String("import-tool-options", "", "JSON or YAML file with delimiter/quote options of the import tool")
	cmd.PreRunE = bindFlags
}
