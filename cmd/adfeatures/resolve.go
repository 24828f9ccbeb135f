package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-adfeatures/pkg/engine"
)

const (
	flagText = "text"
	flagFile = "file"
)

type inputFlags struct {
	text string
	file string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, flagText, "", "ad text")
	cmd.Flags().StringVarP(&f.file, flagFile, "f", "", `file holding the ad text, "-" for stdin`)
	cmd.MarkFlagsMutuallyExclusive(flagText, flagFile)
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		input  inputFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve ad text against the field schema",
		Example: `adfeatures resolve --text "Продаю Toyota Camry 2018, 16000 евро"
adfeatures resolve -f advert.txt --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			text, err := readText(input.text, input.file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sch, err := a.loadSchema(ctx)
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			res, err := eng.Run(ctx, engine.Request{Schema: sch, Text: text})
			if err != nil {
				return err
			}
			if output == outputJSON {
				return writeJSON(a.out, res)
			}
			renderResult(a.out, res)
			return nil
		},
	}
	input.register(cmd)
	cmd.Flags().StringVarP(&output, flagOutput, "o", outputTable, "output format (table, json)")
	return cmd
}
