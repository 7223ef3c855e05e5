package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/escaper/pkg/strarray"
)

func splitCmd() *cobra.Command {
	var (
		sep       string
		maxSplits int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "split <text>",
		Short: "Split text on a separator",
		Long: `Split text on a separator, printing one entry per line.

Empty entries between adjacent separators are kept. --max limits the
number of splits; the remainder stays in the last entry.

Examples:
  escaper split --sep , 'a,,b'
  escaper split --sep , --max 1 --json 'a,b,c'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := strarray.Split(args[0], sep, maxSplits)
			if err != nil {
				return err
			}
			defer a.Release()

			w := cmd.OutOrStdout()
			if asJSON {
				data, err := json.Marshal(a.Entries())
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(data))
				return nil
			}
			fmt.Fprintln(w, strings.Join(a.Entries(), "\n"))
			return nil
		},
	}

	cmd.Flags().StringVar(&sep, "sep", ",", "Separator")
	cmd.Flags().IntVar(&maxSplits, "max", 0, "Maximum number of splits (0 = unlimited)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as a JSON array")

	return cmd
}
