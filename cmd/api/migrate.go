package main

import (
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := database.Migrate(cmd.Context(), rt.db.DB); err != nil {
				return err
			}
			v, err := database.MigrationVersion(cmd.Context(), rt.db.DB)
			if err != nil {
				return err
			}
			rt.sugar.Infow("migrations applied", "version", v)
			return nil
		},
	}
}
