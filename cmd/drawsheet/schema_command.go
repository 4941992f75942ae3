package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drawsheet/internal/parser"
)

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the parameters of the selected schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.schema()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, s.Len())
			for i, p := range s.Parameters() {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), p.Name, p.Unit, p.Hint})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Parameter", "Unit", "Hint"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}

func newPromptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the instruction sent to the vision backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.schema()
			if err != nil {
				return err
			}
			opts, err := ctx.options()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), parser.BuildInstruction(s, opts.Missing))
			return nil
		},
	}
}
