package cli

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Seed organizations, users, projects and tasks from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header("Import"))
			fmt.Fprintf(out, "  Organizations: %d\n", res.Organizations)
			fmt.Fprintf(out, "  Users:         %d\n", res.Users)
			fmt.Fprintf(out, "  Projects:      %d\n", res.Projects)
			fmt.Fprintf(out, "  Tasks:         %d\n", res.Tasks)
			fmt.Fprintf(out, "  Time entries:  %d\n", res.TimeEntries)

			if showIDs && len(res.IDs) > 0 {
				refs := make([]string, 0, len(res.IDs))
				for ref := range res.IDs {
					refs = append(refs, ref)
				}
				sort.Strings(refs)
				rows := make([][]string, 0, len(refs))
				for _, ref := range refs {
					rows = append(rows, []string{ref, res.IDs[ref]})
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.RenderTable([]string{"Ref", "ID"}, rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Print the id each ref was stored under")

	return cmd
}
