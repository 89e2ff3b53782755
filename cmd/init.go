package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Rana718/sheetsync/internal/config"
	"github.com/Rana718/sheetsync/template"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new sheetsync project",
	Long:  `Create sheetsync.config.json, a sample sheet snapshot and a DATABASE_URL entry in .env.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		force, _ := cmd.Flags().GetBool("force")
		return initializeProject(dbType, force)
	},
}

func init() {
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
}

func initializeProject(dbType template.DatabaseType, force bool) error {
	tmpl := template.NewProjectTemplate(dbType)

	directories := tmpl.GetDirectoryStructure()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	cfgContent, err := tmpl.GetConfig()
	if err != nil {
		return err
	}

	const configPath = "sheetsync.config.json"
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	defaults := config.DefaultConfig()
	files := map[string]string{
		configPath: cfgContent,
	}
	if _, err := os.Stat(defaults.Source.Path); os.IsNotExist(err) {
		files[defaults.Source.Path] = tmpl.GetSampleSheet()
	}

	for filePath, content := range files {
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", filePath, err)
		}
	}

	if err := handleEnvFile(".env", tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	fmt.Printf("✅ Successfully initialized sheetsync project with %s database support\n", dbType)
	fmt.Println()
	fmt.Println("📝 Files created:")
	for filePath := range files {
		fmt.Printf("   %s\n", filePath)
	}

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   sheetsync plan                 # Preview the column mapping\n")
	fmt.Printf("   sheetsync replace --dry-run    # Check what would be loaded\n")
	fmt.Printf("   sheetsync replace              # Rebuild the table\n")

	return nil
}

func handleEnvFile(envPath, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by sheetsync\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
