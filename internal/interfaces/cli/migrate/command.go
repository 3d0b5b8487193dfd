package migrate

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"instra/internal/infrastructure/config"
	"instra/internal/infrastructure/database"
	"instra/internal/infrastructure/migration"
	"instra/internal/shared/logger"
)

var (
	env           string
	migrationsDir string
	steps         int
	name          string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back and inspect the schema migrations, or seed baseline data.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "Directory containing migration files")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migration.Runner) error {
				if err := r.Up(); err != nil {
					return err
				}
				logger.Info("migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migration.Runner) error {
				if err := r.Down(steps); err != nil {
					return err
				}
				logger.Info("migrations rolled back", "steps", steps)
				return nil
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migration.Runner) error {
				version, dirty, err := r.Status()
				if err != nil {
					return err
				}
				fmt.Printf("version: %d, dirty: %t\n", version, dirty)
				return nil
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new pair of migration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			upFile, downFile, err := migration.CreateFiles(migrationsDir, name)
			if err != nil {
				return err
			}
			fmt.Printf("created %s\ncreated %s\n", upFile, downFile)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Migration name, e.g. add_user_index")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed baseline roles, permissions and profile configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				if err := migration.Seed(db); err != nil {
					return err
				}
				logger.Info("baseline seed completed")
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd, createCmd, seedCmd)
	return cmd
}

func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	return fn(database.Get())
}

func withRunner(fn func(r *migration.Runner) error) error {
	return withDB(func(db *gorm.DB) error {
		runner, err := migration.NewRunner(db, migrationsDir)
		if err != nil {
			return fmt.Errorf("failed to initialize migration runner: %w", err)
		}
		return fn(runner)
	})
}
