package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zjregee/scout/internal/cli"
	"github.com/zjregee/scout/internal/config"
	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/service"
	"github.com/zjregee/scout/internal/web"
)

const usage = `usage: scout <command> [flags]

commands:
  chat    talk to the agent in the terminal
  web     serve the browser chat session
  graph   write the control-loop diagram
  models  list the models that can be configured
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "chat":
		err = runChat(ctx, os.Args[2:])
	case "web":
		err = runWeb(ctx, os.Args[2:])
	case "graph":
		err = runGraph(os.Args[2:])
	case "models":
		err = runModels(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Logger().WithError(err).Error("scout failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeGraph(path string) {
	if path == "" {
		return
	}
	if err := service.WriteGraph(path); err != nil {
		logging.Logger().WithError(err).Warn("could not write control-loop diagram")
	}
}

func runChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	threadID := fs.String("thread", "", "thread id to continue (overrides cli.thread_id)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *threadID != "" {
		cfg.CLI.ThreadID = *threadID
	}

	writeGraph(cfg.CLI.GraphPath)

	agentService, cleanup, err := service.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logging.Logger().WithError(err).Warn("failed to close checkpoint store")
		}
	}()

	return cli.Run(ctx, agentService, cfg.CLI.ThreadID, os.Stdin, os.Stdout)
}

func runWeb(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	addr := fs.String("addr", "", "listen address (overrides web.addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	agentService, cleanup, err := service.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logging.Logger().WithError(err).Warn("failed to close checkpoint store")
		}
	}()

	server := web.NewServer(agentService)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Web.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	out := fs.String("out", "agent_graph.mmd", "output path; - writes to stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "-" {
		fmt.Fprint(os.Stdout, service.GraphMermaid())
		return nil
	}
	if err := service.WriteGraph(*out); err != nil {
		return err
	}
	logging.Logger().WithField("path", *out).Info("control-loop diagram written")
	return nil
}

func runModels(args []string) error {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current := ""
	if cfg, err := config.Load(*configPath); err == nil {
		current = cfg.Model
	}

	for _, info := range service.ListModels() {
		marker := " "
		if info.ID == current {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %-28s %-12s %s\n", marker, info.ID, info.Provider, info.ContextWindow)
	}
	if _, ok := service.GetModelInfo(current); current != "" && !ok {
		fmt.Fprintf(os.Stdout, "\nconfigured model %q is not in the table\n", current)
	}
	return nil
}
