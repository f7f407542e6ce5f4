package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"db2graph/internal/dialect"
	"db2graph/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	dsn        string
	driver     string
	schemaFlag string
	debug      bool
	logFile    string
)

var RootCmd = &cobra.Command{
	Use:   "db2graph",
	Short: "Migrate a relational database into a graph store through CSV",
	Long: `
     _ _    ____                       _
  __| | |__|___ \ __ _ _ __ __ _ _ __ | |__
 / _' | '_ \ __) / _' | '__/ _' | '_ \| '_ \
| (_| | |_) / __/ (_| | | | (_| | |_) | | | |
 \__,_|_.__/_____\__, |_|  \__,_| .__/|_| |_|
                 |___/          |_|

db2graph - infers a graph model from two related tables, exports it as CSV
and bulk loads it with the graph import tool.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("log.file")
		if path == "" {
			logger.Init(viper.GetBool("log.debug"))
			return nil
		}
		if err := logger.InitFile(path, viper.GetBool("log.debug")); err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func Execute() {
	// Ctrl-C cancels the export and terminates a running import tool.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db2graph.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")
	RootCmd.PersistentFlags().StringVar(&driver, "driver", "", "database/sql driver: mysql, postgres, pgx, sqlserver, oracle, sqlite")
	RootCmd.PersistentFlags().StringVar(&schemaFlag, "schema", "", "schema (database) holding the tables, default is the connection's current schema")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print debug output (queries, commands, tool output)")
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append log output to this file")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("database.schema", RootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("log.debug", RootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log.file", RootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db2graph")
		viper.SetConfigType("yaml")
	}

	// DATABASE_DSN, EXPORT_LIMIT, ...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// connection is an open source database with the dialect and schema to inspect.
type connection struct {
	db      *sql.DB
	dialect dialect.Dialect
	driver  string
	schema  string
}

// openDatabase connects using --dsn/--driver (Flag > Config > Env) or else the active entry
// of the databases list.
func openDatabase(ctx context.Context) (*connection, error) {
	connStr := viper.GetString("database.dsn")
	driverName := viper.GetString("database.driver")
	if connStr == "" {
		config, err := GetActiveDBConfig()
		if err != nil {
			return nil, fmt.Errorf("database.dsn is required (via flag, config or active databases entry): %w", err)
		}
		connStr, driverName = config.DSN, config.Driver
		fmt.Printf("🔗 Using database %s (%s)\n", config.Name, config.Driver)
	}
	if driverName == "" {
		driverName = detectDriver(connStr)
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	d := dialect.GetDialect(driverName)
	schemaName := viper.GetString("database.schema")
	if schemaName == "" {
		if err := db.QueryRowContext(ctx, d.CurrentSchemaQuery()).Scan(&schemaName); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to get current schema: %w", err)
		}
	}
	schemaName = d.DefaultSchema(schemaName)
	if schemaName == "" {
		db.Close()
		return nil, fmt.Errorf("no schema selected: set --schema or select a database in the DSN")
	}

	logger.Infof("Connected via %s, schema %s", driverName, schemaName)
	return &connection{db: db, dialect: d, driver: driverName, schema: schemaName}, nil
}

// detectDriver guesses the driver from the DSN shape.
func detectDriver(connStr string) string {
	lower := strings.ToLower(connStr)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"), strings.Contains(lower, "sslmode"):
		return "postgres"
	case strings.HasPrefix(lower, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(lower, "oracle://"):
		return "oracle"
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return "sqlite"
	default:
		return "mysql"
	}
}
