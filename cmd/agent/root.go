package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pollcmd/internal/agent"
	"pollcmd/internal/agent/config"
	"pollcmd/internal/agent/event"
	"pollcmd/internal/agent/executor"
	"pollcmd/internal/agent/identity"
	"pollcmd/internal/agent/sender"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/logger"
	"pollcmd/internal/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	logLevel   string
	server     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "pollcmd-agent",
		Short:         "Poll a controller for commands and run them locally",
		Version:       version.GetInfo().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.server, "server", "", "Override controller address (host:port)")

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

func run(opts *options) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.server != "" {
		cfg.Server.Address = opts.server
	}

	log, err := logger.New(&cfg.Log, "agent")
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := eventloop.New[event.Event]()

	center := sender.NewMessageCenter(queue, log.Named("sender"))
	center.Add(sender.NewUDPSender(0, cfg.Server.Address, cfg.Transport.Timeout, cfg.Transport.BufferSize, log.Named("udp")))

	exec := executor.New(cfg.Executor.Timeout, log.Named("executor"))
	id := identity.Resolve(cfg.Agent.ID, log)

	a := agent.New(id, queue, center, exec, log)

	log.Info("Starting agent",
		zap.String("version", version.GetInfo().Short()),
		zap.String("agent_id", id),
		zap.String("platform", identity.Platform()),
		zap.String("server", cfg.Server.Address),
		zap.Duration("interval", cfg.Timer.Interval))

	agent.StartTimer(ctx, cfg.Timer.Interval, queue)

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal", zap.String("signal", sig.String()))
	case <-done:
	}

	cancel()
	<-done

	log.Info("Shutdown complete")
	return nil
}
