package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd applies schema.sql
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the schema file to the database. The schema is idempotent, so
running it twice is safe.

Examples:
  server migrate --db postgres://localhost/yatube
  server migrate --schema ./schema.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "schema %s applied\n", cfg.SchemaPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
