package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/logger"
	"pollcmd/internal/server/api"
	"pollcmd/internal/server/config"
	"pollcmd/internal/server/console"
	"pollcmd/internal/server/controller"
	"pollcmd/internal/server/event"
	"pollcmd/internal/server/listener"
	"pollcmd/internal/server/stdin"
	"pollcmd/internal/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	logLevel   string
	noColor    bool
	api        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "pollcmd-server",
		Short:         "Queue operator commands for polling agents and print their output",
		Long:          "pollcmd-server reads one command per line from stdin, hands it to every\nknown agent on its next poll and prints the output agents report back.",
		Version:       version.GetInfo().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored console output")
	cmd.Flags().BoolVar(&opts.api, "api", false, "Enable the HTTP API regardless of config")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetInfo().String())
		},
	}
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noColor {
		cfg.Console.Color = false
	}
	if opts.api {
		cfg.API.Enabled = true
	}

	log, err := logger.New(&cfg.Log, "server")
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := eventloop.New[event.Event]()

	printer := console.New(cmd.OutOrStdout(), cfg.Console.Color)
	ctrl := controller.New(queue, printer, cfg.Client.DefaultOS, log.Named("controller"))

	udp := listener.NewUDPListener(listener.Config{
		Host:       cfg.Listen.Host,
		Port:       cfg.Listen.Port,
		PollWait:   cfg.Listen.PollWait,
		BufferSize: cfg.Listen.BufferSize,
	}, log.Named("listener"))
	if err := udp.Start(ctx, queue); err != nil {
		return err
	}
	defer func() {
		if err := udp.Stop(); err != nil {
			log.Error("Failed to stop listener", zap.Error(err))
		}
	}()

	if cfg.API.Enabled {
		srv := api.NewServer(&cfg.API, queue, log.Named("api"))
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(); err != nil {
				log.Error("Failed to stop API server", zap.Error(err))
			}
		}()
	}

	stdin.Start(cmd.InOrStdin(), queue, log.Named("stdin"))

	log.Info("Starting server",
		zap.String("version", version.GetInfo().Short()),
		zap.String("listen", udp.Addr().String()),
		zap.Bool("api", cfg.API.Enabled))

	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received signal", zap.String("signal", sig.String()))

	log.Info("Starting graceful shutdown")
	cancel()
	<-done

	log.Info("Shutdown complete")
	return nil
}
