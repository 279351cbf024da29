package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mchmarny/examscore/pkg/config"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const saveFlag = "save"

func newConfigCmd() *cli.Command {
	return &cli.Command{
		Name:            "config",
		Usage:           "Show the effective settings",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  saveFlag,
				Usage: "Write the effective settings to the config file",
			},
		},
		Action: cmdConfig,
	}
}

type configView struct {
	config.Config `yaml:",inline"`
}

func (v configView) writeText(w io.Writer) error {
	e := yaml.NewEncoder(w)
	if err := e.Encode(v.Config); err != nil {
		return err
	}
	return e.Close()
}

func cmdConfig(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd).Config

	if cmd.Bool(saveFlag) {
		path := cmd.String(configFlag)
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		slog.Info("config saved", "path", path)
	}

	return encode(cmd, configView{*cfg})
}
