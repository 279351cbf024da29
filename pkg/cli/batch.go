package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mchmarny/examscore/pkg/predict"
	"github.com/urfave/cli/v3"
)

const (
	stdinPath = "-"

	inputFlag   = "input"
	workersFlag = "workers"
)

func newBatchCmd() *cli.Command {
	return &cli.Command{
		Name:            "batch",
		Usage:           "Predict exam scores for many students",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     inputFlag,
				Aliases:  []string{"i"},
				Usage:    "CSV (with header row) or JSON lines file of student records, - for stdin",
				Required: true,
			},
			&cli.IntFlag{
				Name:  workersFlag,
				Usage: "Number of records scored concurrently (default: from config)",
			},
		},
		Action: cmdBatch,
	}
}

type batchResult struct {
	Total   int                `json:"total" yaml:"total"`
	Failed  int                `json:"failed" yaml:"failed"`
	Results []*predict.Outcome `json:"results" yaml:"results"`
}

func (b batchResult) writeText(w io.Writer) error {
	for _, o := range b.Results {
		var err error
		if o.Prediction != nil {
			_, err = fmt.Fprintf(w, "%d\t%s\t%s\n", o.Index+1, o.Prediction.Display, o.Prediction.Model)
		} else {
			_, err = fmt.Fprintf(w, "%d\terror\t%s\n", o.Index+1, o.Error)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func cmdBatch(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	rows, err := readInput(cmd, cmd.String(inputFlag))
	if err != nil {
		return err
	}

	p, err := cfg.loadPredictor()
	if err != nil {
		return err
	}

	workers := cfg.Config.Workers
	if cmd.IsSet(workersFlag) {
		workers = int(cmd.Int(workersFlag))
	}

	out, err := p.PredictBatch(ctx, rows, workers)
	if err != nil {
		return err
	}

	res := batchResult{Total: len(out), Results: out}
	for _, o := range out {
		if o.Err != nil {
			res.Failed++
		}
	}
	slog.Debug("batch complete", "rows", res.Total, "failed", res.Failed, "workers", workers)

	if err := encode(cmd, res); err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%w: %d of %d records failed", errInputRejected, res.Failed, res.Total)
	}
	return nil
}

func readInput(cmd *cli.Command, path string) ([]map[string]string, error) {
	if path == stdinPath {
		r := cmd.Root().Reader
		if r == nil {
			r = os.Stdin
		}
		return readRows(r, "")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
