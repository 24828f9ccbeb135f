package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-adfeatures/internal/marketplace"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

func newOptionsCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "options {makes|models|generations}",
		Short: "List marketplace option values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVarP(&output, flagOutput, "o", outputTable, "output format (table, json)")

	list := func(fetch func(ctx context.Context, market *marketplace.Client, args []string) ([]schema.Option, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			market, err := a.marketplace()
			if err != nil {
				return err
			}
			options, err := fetch(cmd.Context(), market, args)
			if err != nil {
				return err
			}
			choices := marketplace.Choices(options)
			if output == outputJSON {
				return writeJSON(a.out, choices)
			}
			renderChoices(a.out, choices)
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "makes",
		Short: "List vehicle makes",
		Args:  cobra.NoArgs,
		RunE: list(func(ctx context.Context, market *marketplace.Client, _ []string) ([]schema.Option, error) {
			return market.FieldOptions(ctx, a.cfg.Server.MakeField)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "models {make-id}",
		Short: "List the models of a make",
		Args:  cobra.ExactArgs(1),
		RunE: list(func(ctx context.Context, market *marketplace.Client, args []string) ([]schema.Option, error) {
			return market.DependentOptions(ctx, a.cfg.Server.MakeField, args[0])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "generations {model-id}",
		Aliases: []string{"gens"},
		Short:   "List the generations of a model",
		Args:    cobra.ExactArgs(1),
		RunE: list(func(ctx context.Context, market *marketplace.Client, args []string) ([]schema.Option, error) {
			return market.DependentOptions(ctx, a.cfg.Server.ModelField, args[0])
		}),
	})
	return cmd
}
