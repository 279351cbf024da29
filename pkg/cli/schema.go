package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/examscore/pkg/predict"
	"github.com/mchmarny/examscore/pkg/student"
	"github.com/urfave/cli/v3"
)

func newSchemaCmd() *cli.Command {
	return &cli.Command{
		Name:            "schema",
		Usage:           "Show the training feature columns, model and accepted field values",
		HideHelpCommand: true,
		Action:          cmdSchema,
	}
}

type schemaInfo struct {
	Model   string          `json:"model" yaml:"model"`
	Source  string          `json:"source" yaml:"source"`
	Columns []string        `json:"columns" yaml:"columns"`
	Fields  []student.Field `json:"fields" yaml:"fields"`
}

func newSchemaInfo(p *predict.Predictor) schemaInfo {
	return schemaInfo{
		Model:   p.ModelLabel(),
		Source:  p.Source(),
		Columns: p.Columns(),
		Fields:  student.Fields(),
	}
}

func (s schemaInfo) writeText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Model: %s\nSource: %s\nColumns:\n", s.Model, s.Source); err != nil {
		return err
	}
	for i, c := range s.Columns {
		if _, err := fmt.Fprintf(w, "  %2d  %s\n", i+1, c); err != nil {
			return err
		}
	}
	return nil
}

func cmdSchema(_ context.Context, cmd *cli.Command) error {
	p, err := getConfig(cmd).loadPredictor()
	if err != nil {
		return err
	}
	return encode(cmd, newSchemaInfo(p))
}
