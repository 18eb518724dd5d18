package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// regionsCmd represents the regions command
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspect the stored regions",
}

var regionsListCmd = &cobra.Command{
	Use:   "list <world>",
	Short: "List the regions stored for a world",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		env, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close(cmd.Context())

		regions, err := env.driver.Get(args[0]).LoadAll(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			type row struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Priority int    `json:"priority"`
				Parent   string `json:"parent,omitempty"`
			}
			rows := make([]row, 0, len(regions))
			for _, r := range regions {
				rows = append(rows, row{ID: r.ID, Type: string(r.Kind()), Priority: r.Priority, Parent: r.ParentID()})
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tPRIORITY\tPARENT")
		for _, r := range regions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Kind(), r.Priority, r.ParentID())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d regions in %s\n", len(regions), args[0])
		return nil
	},
}

func init() {
	regionsListCmd.Flags().Bool("json", false, "Print the regions as JSON")
	regionsCmd.AddCommand(regionsListCmd)
	RootCmd.AddCommand(regionsCmd)
}
