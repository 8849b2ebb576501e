package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogurasousui/payroll-forensics/internal/adapters/source/file"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/mapping"
)

func newMappingCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect the column mapping heuristics",
	}

	var kind string
	suggest := &cobra.Command{
		Use:   "suggest FILE",
		Short: "Print the suggested logical field to column mapping for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := dataset.ParseKind(kind)
			if err != nil {
				return err
			}
			raw, err := file.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := mapping.Suggest(k, raw.Headers)
			if err != nil {
				return err
			}
			if manual := root.cfg.KindMappings()[k]; len(manual) > 0 {
				if m, err = m.Override(k, raw.Headers, manual); err != nil {
					return err
				}
			}
			schema, err := mapping.SchemaFor(k)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tCOLUMN")
			for _, f := range schema.FieldNames() {
				col, ok := m[f]
				if !ok {
					col = mapping.NoColumn
				}
				fmt.Fprintf(tw, "%s\t%s\n", f, col)
			}
			return tw.Flush()
		},
	}
	suggest.Flags().StringVar(&kind, "kind", string(dataset.KindPayroll), "table kind")

	cmd.AddCommand(suggest)
	return cmd
}
