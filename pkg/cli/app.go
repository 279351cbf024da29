package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/examscore/pkg/artifact"
	"github.com/mchmarny/examscore/pkg/config"
	"github.com/mchmarny/examscore/pkg/logging"
	"github.com/mchmarny/examscore/pkg/predict"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "examscore"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

const (
	configFlag    = "config"
	artifactsFlag = "artifacts"
	bundleFlag    = "bundle"
	formatFlag    = "format"
	logFormatFlag = "log-format"
	debugFlag     = "debug"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "Path to the config file (default: ~/.examscore/config.yaml when present)",
			Sources: cli.EnvVars("EXAMSCORE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    artifactsFlag,
			Aliases: []string{"a"},
			Usage:   "Directory or http(s) base URL holding the model artifacts",
			Value:   config.DefaultArtifacts,
			Sources: cli.EnvVars("EXAMSCORE_ARTIFACTS"),
		},
		&cli.StringFlag{
			Name:    bundleFlag,
			Usage:   "SQLite artifact bundle, used instead of --artifacts when set",
			Sources: cli.EnvVars("EXAMSCORE_BUNDLE"),
		},
		&cli.StringFlag{
			Name:  formatFlag,
			Usage: "Output format [json, yaml, text]",
			Value: config.DefaultFormat,
		},
		&cli.StringFlag{
			Name:  logFormatFlag,
			Usage: "Log format [text, json]",
			Value: config.DefaultLogFormat,
		},
		&cli.BoolFlag{
			Name:  debugFlag,
			Usage: "Prints verbose logs (optional, default: false)",
		},
	}
}

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger(config.DefaultLogLevel)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Config *config.Config
	Debug  bool

	store  *artifact.Store
	bundle *artifact.BundleSource
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

// loadPredictor loads the artifacts once per process and wires the
// prediction pipeline over them.
func (c *appConfig) loadPredictor() (*predict.Predictor, error) {
	if c.store == nil {
		src, err := c.source()
		if err != nil {
			return nil, err
		}
		c.store = artifact.NewStore(src)
	}

	arts, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	return predict.New(arts)
}

func (c *appConfig) source() (artifact.Source, error) {
	if c.Config.Bundle != "" {
		b, err := artifact.OpenBundle(c.Config.Bundle)
		if err != nil {
			return nil, fmt.Errorf("opening bundle: %w", err)
		}
		c.bundle = b
		return b, nil
	}
	if artifact.IsURL(c.Config.Artifacts) {
		return artifact.NewURLSource(c.Config.Artifacts, nil)
	}
	return artifact.NewDirSource(c.Config.Artifacts), nil
}

func (c *appConfig) close() error {
	if c.bundle == nil {
		return nil
	}
	err := c.bundle.Close()
	c.bundle = nil
	return err
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Usage:                 "Predict student exam scores from a pre-trained regression model",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Metadata:              map[string]any{},
		Flags:                 rootFlags(),
		Commands: []*cli.Command{
			newPredictCmd(),
			newBatchCmd(),
			newServeCmd(),
			newSchemaCmd(),
			newConfigCmd(),
		},
		Before: before,
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok {
				return cfg.close()
			}
			return nil
		},
	}
}

func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.LoadOrDefault(cmd.String(configFlag))
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}

	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid settings: %w", err)
	}

	// --debug applies to this run only and never reaches a saved config
	debug := cmd.Bool(debugFlag)
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logging.SetDefaultLogger(cfg.LogFormat, level)

	cmd.Root().Metadata[appConfigKey] = &appConfig{
		Config: cfg,
		Debug:  debug,
	}
	return ctx, nil
}

// applyFlags overrides config file values with flags set on the command
// line or through the environment.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet(artifactsFlag) {
		cfg.Artifacts = cmd.String(artifactsFlag)
	}
	if cmd.IsSet(bundleFlag) {
		cfg.Bundle = cmd.String(bundleFlag)
	}
	if cmd.IsSet(formatFlag) {
		cfg.Format = normalizeFormat(cmd.String(formatFlag))
	}
	if cmd.IsSet(logFormatFlag) {
		cfg.LogFormat = cmd.String(logFormatFlag)
	}
}

func normalizeFormat(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "yml" {
		return formatYAML
	}
	return f
}

// textWriter is implemented by results that have a plain text rendering.
type textWriter interface {
	writeText(w io.Writer) error
}

// encode writes v to the command output in the configured format.
func encode(cmd *cli.Command, v any) error {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}

	switch normalizeFormat(getConfig(cmd).Config.Format) {
	case formatYAML:
		ye := yaml.NewEncoder(w)
		if err := ye.Encode(v); err != nil {
			return err
		}
		return ye.Close()
	case formatText:
		if t, ok := v.(textWriter); ok {
			return t.writeText(w)
		}
	}

	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// errInputRejected marks command failures caused by user data.
var errInputRejected = errors.New("input rejected")
