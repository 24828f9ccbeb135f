package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/review"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

type payloadFlags struct {
	input       inputFlags
	region      string
	phone       string
	images      []string
	features    []string
	strict      bool
	interactive bool
	optional    bool
}

func (f *payloadFlags) register(cmd *cobra.Command) {
	f.input.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&f.region, "region", "", "region option id")
	flags.StringVar(&f.phone, "phone", "", "contact phone number")
	flags.StringSliceVar(&f.images, "image", nil, "uploaded image ids")
	flags.StringArrayVar(&f.features, "feature", nil, `feature override as id=value or id=value:unit`)
	flags.BoolVar(&f.strict, "strict", false, "fail when required fields are missing")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "ask for unresolved fields before building")
	flags.BoolVar(&f.optional, "optional", false, "also ask for unresolved optional fields in interactive mode")
}

// overrides converts the flags. A trailing ":unit" is split off a feature
// value only when sch lists it among the field's units.
func (f *payloadFlags) overrides(sch *schema.Schema) (payload.Overrides, error) {
	ov := payload.Overrides{
		Region: f.region,
		Phone:  f.phone,
		Images: f.images,
	}
	for _, raw := range f.features {
		fv, err := parseFeature(raw, sch)
		if err != nil {
			return payload.Overrides{}, err
		}
		ov.Features = append(ov.Features, fv)
	}
	return ov, nil
}

func parseFeature(raw string, sch *schema.Schema) (payload.FeatureValue, error) {
	id, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return payload.FeatureValue{}, fmt.Errorf("adfeatures: feature %q: want id=value", raw)
	}
	fv := payload.FeatureValue{ID: strings.TrimSpace(id), Value: value}
	idx := strings.LastIndex(value, ":")
	if idx < 0 || sch == nil {
		return fv, nil
	}
	if field, known := sch.Field(fv.ID); known {
		if unit := strings.TrimSpace(value[idx+1:]); field.AcceptsUnit(unit) {
			fv.Value, fv.Unit = value[:idx], unit
		}
	}
	return fv, nil
}

// assemble resolves the text and builds the payload, asking the user for the
// gaps first when interactive is set.
func (a *app) assemble(ctx context.Context, f *payloadFlags, text string) (*schema.Schema, *payload.Payload, error) {
	sch, err := a.loadSchema(ctx)
	if err != nil {
		return nil, nil, err
	}
	ov, err := f.overrides(sch)
	if err != nil {
		return nil, nil, err
	}
	eng, err := a.engine()
	if err != nil {
		return nil, nil, err
	}
	builder, err := a.payloadBuilder(f.strict)
	if err != nil {
		return nil, nil, err
	}

	res, err := eng.Run(ctx, engine.Request{Schema: sch, Text: text})
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("resolution finished", zap.String("run_id", res.RunID), zap.Int("resolved", res.ResolvedCount()), zap.Int("fields", sch.Len()))

	if f.interactive {
		market, err := a.marketplace()
		if err != nil {
			return nil, nil, err
		}
		options := []review.Option{review.WithOptionLookup(market)}
		if f.optional {
			options = append(options, review.WithOptionalFields())
		}
		answers, err := review.New(review.NewSurveyDriver(), options...).Fill(ctx, res)
		if err != nil {
			return nil, nil, err
		}
		// Flag overrides are applied after the answers so they keep the last word.
		ov.Features = append(answers, ov.Features...)
	}

	p, err := builder.Build(ctx, sch, res.Store, ov)
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			renderIssues(a.out, verr.Issues)
		}
		return nil, nil, err
	}
	return sch, p, nil
}

func (f *payloadFlags) text(cmd *cobra.Command) (string, error) {
	if f.input.file == "-" && f.interactive {
		return "", errors.New("adfeatures: --interactive cannot read the ad text from stdin")
	}
	return readText(f.input.text, f.input.file, cmd.InOrStdin())
}

func newPayloadCmd(a *app) *cobra.Command {
	var f payloadFlags
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Build the advert submission payload without submitting it",
		Example: `adfeatures payload -f advert.txt --phone 069123456 --image a.jpg --image b.jpg
adfeatures payload --text "..." --feature 101=11 --feature 2=15000:usd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := f.text(cmd)
			if err != nil {
				return err
			}
			_, p, err := a.assemble(cmd.Context(), &f, text)
			if err != nil {
				return err
			}
			if err := writeJSON(a.out, p); err != nil {
				return err
			}
			renderIssues(cmd.ErrOrStderr(), p.Issues)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSubmitCmd(a *app) *cobra.Command {
	var (
		f   payloadFlags
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Resolve ad text, build the payload and post the advert",
		Example: `adfeatures submit -f advert.txt --phone 069123456 --image a.jpg -i
adfeatures submit --text "..." --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.input.file == "-" && !yes {
				return errors.New("adfeatures: reading the ad text from stdin requires --yes")
			}
			text, err := f.text(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sch, p, err := a.assemble(ctx, &f, text)
			if err != nil {
				return err
			}
			renderIssues(cmd.ErrOrStderr(), p.Issues)

			if !yes {
				if err := review.New(review.NewSurveyDriver()).Confirm(ctx, sch, p); err != nil {
					if errors.Is(err, review.ErrDeclined) {
						fmt.Fprintln(a.out, "submission cancelled")
						return nil
					}
					return err
				}
			}

			market, err := a.marketplace()
			if err != nil {
				return err
			}
			sub, err := market.Submit(ctx, p)
			if err != nil {
				return err
			}
			a.logger.Info("advert submitted", zap.String("advert_id", sub.AdvertID), zap.String("url", sub.URL))
			fmt.Fprintf(a.out, "advert %s created: %s\n", sub.AdvertID, sub.URL)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "submit without the confirmation prompt")
	return cmd
}
