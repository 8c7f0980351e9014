package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/saravenpi/switchboard/internal/backend"
	"github.com/saravenpi/switchboard/internal/config"
	"github.com/saravenpi/switchboard/internal/enrich"
	"github.com/saravenpi/switchboard/internal/logging"
	"github.com/saravenpi/switchboard/internal/ui"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Printf("Switchboard v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		case "init":
			if err := initConfig(); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "config":
			if err := printConfig(); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := backend.New(cfg.BackendURL, backend.WithLogger(log))
	scheduler := enrich.New(client, cfg.BadgeDelay, log)
	defer scheduler.Close()

	log.Info("starting", zap.String("version", version), zap.String("backend_url", cfg.BackendURL))

	app := ui.NewApp(ui.Env{
		Ctx:       ctx,
		Backend:   client,
		Scheduler: scheduler,
		Log:       log,
		Config:    cfg,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		return err
	}
	return nil
}

func initConfig() error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists at %s\n", path)
		return nil
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

func printConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := config.Path()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Printf("# %s\n%s", path, data)
	return nil
}

func printHelp() {
	help := `Switchboard - Terminal Subaccount Dashboard

Usage:
  switchboard              Start the dashboard
  switchboard init         Write a default config to ~/.switchboard/config.yml
  switchboard config       Print the resolved configuration
  switchboard version      Show version information
  switchboard help         Show this help message

Navigation:
  ↑/↓ or j/k        Navigate lists
  Enter             Select/Open item
  ESC               Go back
  q                 Quit from current view
  ctrl+c            Force quit

Subaccounts:
  ←/→ or h/l        Previous/next page
  f                 Only show subaccounts missing an emergency address
  n                 Create subaccount
  d                 Delete (close) subaccount
  r                 Refresh list and badges
  ?                 Toggle full help

Subaccount detail:
  enter             Open conversations for the selected number
  i                 Phone number info
  x                 Release phone number
  e                 Remove emergency address
  c                 Rename subaccount

Messages:
  ↑/↓ or j/k        Select message
  enter             Show full message detail

Call Control:
  tab               Switch between caller, destination and call list
  enter             Place call
  x                 Hang up selected call

Configuration:
  ~/.switchboard/config.yml (override with SWITCHBOARD_CONFIG)
  SWITCHBOARD_BACKEND_URL and SWITCHBOARD_LOG_LEVEL override the file.
  Logs are written to ~/.switchboard/switchboard.log by default.
`
	fmt.Print(help)
}
