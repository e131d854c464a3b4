package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	casesLimit int
	casesJSON  bool
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List recently stored fraud cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.ListRecent(ctx, casesLimit)
		if err != nil {
			return err
		}

		if casesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tREGION\tEVENT\tSOURCE")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				r.CreatedAt.Format("2006-01-02"), r.Region, r.Event, r.SourceURL)
		}
		return w.Flush()
	},
}

func init() {
	casesCmd.Flags().IntVar(&casesLimit, "limit", 20, "maximum cases to list")
	casesCmd.Flags().BoolVar(&casesJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(casesCmd)
}
