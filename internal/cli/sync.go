package cli

import (
	"fmt"

	"github.com/estatedesk/portal/internal/services"
	"github.com/spf13/cobra"
)

func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile client-consultant links with the remote endpoint once",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := services.NewReconciler(e.store, e.cfg.Remote).SyncClientConsultants(commandContext(cmd))
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "remote=%d kept=%d dropped=%d total=%d synced_at=%s\n",
				result.Remote, result.Kept, result.Dropped, result.Total, formatTime(result.SyncedAt))
			return nil
		},
	}
}
