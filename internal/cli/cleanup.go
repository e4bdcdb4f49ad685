package cli

import (
	"errors"
	"fmt"

	"github.com/estatedesk/portal/internal/models"
	"github.com/spf13/cobra"
)

func NewCleanupCommand(opts *RootOptions) *cobra.Command {
	var consultant, client, project string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove every assignment that mentions one entity",
		Long: `Remove every assignment edge that mentions the given consultant, client
or project. Entity rows are left alone; use this to clear edges that outlived
their entity.`,
		Example: "  portalctl cleanup --consultant 2b0c6f0e-9d1e-4c57-a3f4-8f1c2d9e7a10",
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, v := range []string{consultant, client, project} {
				if v != "" {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --consultant, --client or --project is required")
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := commandContext(cmd)
			var (
				kind    string
				removed int
			)
			switch {
			case consultant != "":
				id, perr := models.ParseConsultantID(consultant)
				if perr != nil {
					return perr
				}
				kind = "consultant"
				removed, err = e.assignments.CleanupConsultantAssignments(ctx, id)
			case client != "":
				id, perr := models.ParseClientID(client)
				if perr != nil {
					return perr
				}
				kind = "client"
				removed, err = e.assignments.CleanupClientAssignments(ctx, id)
			default:
				id, perr := models.ParseProjectID(project)
				if perr != nil {
					return perr
				}
				kind = "project"
				removed, err = e.assignments.CleanupProjectAssignments(ctx, id)
			}
			if err != nil {
				return fmt.Errorf("cleanup %s: %w", kind, err)
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"entity": kind, "removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d edge(s) for %s\n", removed, kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&consultant, "consultant", "", "consultant ID")
	cmd.Flags().StringVar(&client, "client", "", "client ID")
	cmd.Flags().StringVar(&project, "project", "", "project ID")
	return cmd
}
