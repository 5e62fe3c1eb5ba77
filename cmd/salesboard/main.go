package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/comptoir-lab/salesboard/internal/app"
	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("salesboard exited with error")
	}
}

// splitCommand peels a leading subcommand off the argument list. An empty or
// flag-like first argument falls through to the default serve command.
func splitCommand(args []string) (string, []string) {
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		return args[0], args[1:]
	}
	return "serve", args
}

func run() error {
	command, args := splitCommand(os.Args[1:])

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "", "path to the config file")
	email := flags.String("email", "", "admin email (create-admin)")
	password := flags.String("password", "", "admin password (create-admin)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := config.AppConfig{ConfigPath: *configPath}
	if appCfg, errLoad := config.Load(config.ResolveConfigPath(cfg.ConfigPath)); errLoad == nil {
		logging.Setup(appCfg.Log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		return app.RunServer(ctx, cfg)
	case "migrate":
		return app.Migrate(ctx, cfg)
	case "create-admin":
		return app.CreateAdmin(ctx, cfg, *email, *password)
	default:
		return fmt.Errorf("unknown command %q (expected serve, migrate or create-admin)", command)
	}
}
