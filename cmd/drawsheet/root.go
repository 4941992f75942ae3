package main

import (
	"github.com/spf13/cobra"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	_ "drawsheet/internal/parser/claude"
	_ "drawsheet/internal/parser/gemini"
	_ "drawsheet/internal/parser/openai"
	_ "drawsheet/internal/parser/openrouter"
	"drawsheet/internal/schema"
)

// commandContext carries settings shared by every subcommand. Flags override
// the DRAWSHEET_ environment configuration.
type commandContext struct {
	schemaName string
	missing    string
	stripUnits bool

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	root := &cobra.Command{
		Use:           "drawsheet",
		Short:         "Extract datasheet parameters from engineering drawings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx.cfg = cfg
			if !cmd.Flags().Changed("schema") {
				ctx.schemaName = cfg.Extraction.Schema
			}
			if !cmd.Flags().Changed("missing") {
				ctx.missing = cfg.Extraction.MissingPolicy
			}
			if !cmd.Flags().Changed("strip-units") {
				ctx.stripUnits = cfg.Extraction.StripUnits
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&ctx.schemaName, "schema", "cylinder", "Parameter schema name")
	root.PersistentFlags().StringVar(&ctx.missing, "missing", "blank", "Value for unreported parameters: blank or not_available")
	root.PersistentFlags().BoolVar(&ctx.stripUnits, "strip-units", false, "Keep only the leading token of values that carry a unit")

	root.AddCommand(newExtractCommand(ctx))
	root.AddCommand(newSchemaCommand(ctx))
	root.AddCommand(newPromptCommand(ctx))

	return root
}

func (c *commandContext) schema() (schema.Schema, error) {
	return schema.ByName(c.schemaName)
}

func (c *commandContext) options() (parser.NormalizeOptions, error) {
	policy, err := parser.ParseMissingPolicy(c.missing)
	if err != nil {
		return parser.NormalizeOptions{}, err
	}
	return parser.NormalizeOptions{Missing: policy, StripUnits: c.stripUnits}, nil
}
