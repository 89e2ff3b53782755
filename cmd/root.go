package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.4.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════╗",
		"║                                              ║",
		"║     📊  sheetsync  →  🗄️                      ║",
		"║                                              ║",
		"║     Spreadsheet to SQL table sync            ║",
		"║     PostgreSQL • MySQL • SQLite              ║",
		"║                                              ║",
		"╚══════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("              ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "sheetsync",
	Short: "Sync spreadsheet rows into a relational table",
	Long: `
sheetsync loads a spreadsheet snapshot (JSON, CSV/TSV or XLSX) into a
database table.

Strategies:
- replace: derive the table from the sheet headers and rebuild it atomically
- upsert:  write mapped columns into an existing table keyed by a column

Database Support:
- PostgreSQL
- MySQL
- SQLite`,
	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("sheetsync version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sheetsync.config.json)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(upsertCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("sheetsync.config")
	}

	viper.SetEnvPrefix("SHEETSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.ReadInConfig()
}
