package cli

import (
	"fmt"
	"time"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/store"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type edgeRow struct {
	A         string    `json:"idA"`
	B         string    `json:"idB"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRows[A, B ~string](edges []store.Edge[A, B]) []edgeRow {
	rows := make([]edgeRow, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, edgeRow{A: string(e.A), B: string(e.B), CreatedAt: e.CreatedAt})
	}
	return rows
}

func relationHeaders(t events.Type) []any {
	switch t {
	case events.ProjectConsultant:
		return []any{"Project", "Consultant", "Created"}
	case events.ProjectClient:
		return []any{"Project", "Client", "Created"}
	default:
		return []any{"Client", "Consultant", "Created"}
	}
}

func NewEdgesCommand(opts *RootOptions) *cobra.Command {
	var relation string

	cmd := &cobra.Command{
		Use:   "edges",
		Short: "Print one assignment relation",
		Example: `  portalctl edges --relation client-consultant
  portalctl edges --relation project-client --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := commandContext(cmd)
			var rows []edgeRow
			switch events.Type(relation) {
			case events.ProjectConsultant:
				rows = toRows(e.store.ProjectConsultants.All(ctx))
			case events.ProjectClient:
				rows = toRows(e.store.ProjectClients.All(ctx))
			case events.ClientConsultant:
				rows = toRows(e.store.ClientConsultants.All(ctx))
			default:
				return fmt.Errorf("unknown relation %q", relation)
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return writeJSON(out, rows)
			}
			table := tablewriter.NewWriter(out)
			table.Header(relationHeaders(events.Type(relation))...)
			for _, r := range rows {
				if err := table.Append(r.A, r.B, formatTime(r.CreatedAt)); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVarP(&relation, "relation", "r", string(events.ClientConsultant),
		"project-consultant, project-client or client-consultant")
	return cmd
}
