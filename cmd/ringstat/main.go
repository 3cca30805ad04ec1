package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp(ctx, logger).Run(os.Args); err != nil {
		logger.Error("ringstat failed", zap.Error(err))
		cancel()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, logger *zap.Logger) *cli.App {
	configFlag := cli.StringFlag{
		Name:  "config, c",
		Value: DefaultConfigPath,
		Usage: "path to the YAML configuration",
	}

	app := cli.NewApp()
	app.Name = "ringstat"
	app.Version = Version
	app.Usage = "rolling window statistics over recorded sensor readings"
	app.Commands = []cli.Command{
		{
			Name:  "replay",
			Usage: "replay the configured sources and log per sensor statistics",
			Flags: []cli.Flag{configFlag},
			Action: func(c *cli.Context) error {
				r, err := replayFromConfig(ctx, logger, c.String("config"))
				if err != nil {
					return err
				}
				r.Report()
				return nil
			},
		},
		{
			Name:  "serve",
			Usage: "replay the configured sources and expose the statistics to prometheus",
			Flags: []cli.Flag{
				configFlag,
				cli.DurationFlag{
					Name:  "interval",
					Value: DefaultStreamInterval,
					Usage: "snapshot period of the /stream websocket",
				},
			},
			Action: func(c *cli.Context) error {
				r, err := replayFromConfig(ctx, logger, c.String("config"))
				if err != nil {
					return err
				}
				r.Report()

				mux, err := NewMetricsHandler(r.Registry())
				if err != nil {
					return err
				}
				mux.Handle("/stream", NewStreamHandler(logger, r.Registry(), c.Duration("interval")))
				return Serve(ctx, logger, r.cfg.Listen, mux)
			},
		},
		{
			Name:  "convert",
			Usage: "convert a timestamp,value CSV into binary sample records",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "csv", Usage: "input CSV file"},
				cli.StringFlag{Name: "out", Usage: "output binary file"},
			},
			Action: func(c *cli.Context) error {
				if c.String("csv") == "" || c.String("out") == "" {
					return cli.NewExitError("both --csv and --out are required", 2)
				}
				n, err := Convert(c.String("csv"), c.String("out"))
				if err != nil {
					return err
				}
				logger.Info("conversion finished", zap.String("out", c.String("out")), zap.Int("records", n))
				return nil
			},
		},
	}
	return app
}

func replayFromConfig(ctx context.Context, logger *zap.Logger, path string) (*Replayer, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Info("ringstat", zap.String("version", Version), zap.Int("sources", len(cfg.Sources)))

	r, err := NewReplayer(logger, cfg)
	if err != nil {
		return nil, err
	}
	if err := r.Run(ctx); err != nil {
		return nil, err
	}
	return r, nil
}
