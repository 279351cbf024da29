package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mchmarny/examscore/pkg/predict"
	"github.com/mchmarny/examscore/pkg/student"
	"github.com/urfave/cli/v3"
)

const showFeaturesFlag = "show-features"

func newPredictCmd() *cli.Command {
	return &cli.Command{
		Name:            "predict",
		Usage:           "Predict the exam score of one student",
		HideHelpCommand: true,
		Flags: append(fieldFlags(), &cli.BoolFlag{
			Name:  showFeaturesFlag,
			Usage: "Include the aligned, scaled feature row in the output",
		}),
		Action: cmdPredict,
	}
}

// fieldFlags declares one flag per student field, defaulted to the values
// the entry form starts with.
func fieldFlags() []cli.Flag {
	fields := student.Fields()
	flags := make([]cli.Flag, 0, len(fields))
	for _, f := range fields {
		if f.Kind == student.Numeric {
			def, _ := strconv.Atoi(f.Default)
			flags = append(flags, &cli.IntFlag{
				Name:  flagName(f.Name),
				Usage: fmt.Sprintf("%s [%d-%d]", f.Usage, f.Min, f.Max),
				Value: def,
			})
			continue
		}
		flags = append(flags, &cli.StringFlag{
			Name:  flagName(f.Name),
			Usage: fmt.Sprintf("%s [%s]", f.Usage, strings.Join(f.Levels, ", ")),
			Value: f.Default,
		})
	}
	return flags
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// fieldValues collects the raw field values from the command flags.
func fieldValues(cmd *cli.Command) map[string]string {
	m := make(map[string]string)
	for _, f := range student.Fields() {
		name := flagName(f.Name)
		if f.Kind == student.Numeric {
			m[f.Name] = strconv.Itoa(int(cmd.Int(name)))
			continue
		}
		m[f.Name] = cmd.String(name)
	}
	return m
}

func cmdPredict(_ context.Context, cmd *cli.Command) error {
	r, err := student.FromMap(fieldValues(cmd))
	if err != nil {
		return fmt.Errorf("%w: %w", errInputRejected, err)
	}

	p, err := getConfig(cmd).loadPredictor()
	if err != nil {
		return err
	}

	res, err := p.Predict(r)
	if err != nil {
		if predict.IsInputError(err) {
			return fmt.Errorf("%w: %w", errInputRejected, err)
		}
		return fmt.Errorf("predicting: %w", err)
	}

	if !cmd.Bool(showFeaturesFlag) {
		res.Features = nil
	}
	return encode(cmd, predictionView{*res})
}

type predictionView struct {
	predict.Prediction `yaml:",inline"`
}

func (v predictionView) writeText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Predicted Exam Score: %s\nModel used: %s\n", v.Display, v.Model); err != nil {
		return err
	}
	if len(v.Features) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Features:"); err != nil {
		return err
	}
	for _, f := range v.Features {
		if _, err := fmt.Fprintf(w, "  %-32s %v\n", f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}
