package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerfoyer/internal/client"
	"github.com/lox/pokerfoyer/internal/protocol"
)

var CLI struct {
	Config   string           `short:"c" default:"pokerfoyer.hcl" help:"Path to HCL configuration file"`
	Server   string           `short:"s" help:"Server URL to connect to (overrides config)"`
	Player   string           `short:"p" help:"Player name (overrides config)"`
	LogLevel string           `short:"l" help:"Log level (overrides config)"`
	Version  kong.VersionFlag `help:"Print the client version and exit"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pokerfoyer"),
		kong.Description("Networked poker client"),
		kong.UsageOnError(),
		kong.Vars{"version": protocol.ClientVersion.String()},
	)

	cfg, err := client.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	if CLI.Server != "" {
		cfg.Server.URL = CLI.Server
	}
	if CLI.Player != "" {
		cfg.Player.Name = CLI.Player
	}
	if CLI.LogLevel != "" {
		cfg.Table.LogLevel = CLI.LogLevel
	}

	if cfg.Player.Name == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Scanln(&input)
		cfg.Player.Name = strings.TrimSpace(input)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Table.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting pokerfoyer",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"version", protocol.ClientVersion)

	c := client.New(cfg, quartz.NewReal(), logger)
	c.Observe(func(n client.Notice) {
		switch n.Kind {
		case client.NoticeConnected:
			fmt.Printf("Connected to %s (server %s)\n", cfg.Server.URL, c.Session().ServerVersion())
			if err := c.SubscribeFoyer(); err != nil {
				logger.Warn("failed to subscribe to foyer", "error", err)
			}
		case client.NoticeUpgradeAdvisory:
			fmt.Printf("Note: %s\n", n.Message)
		case client.NoticeFoyerChanged:
			games, players := c.Foyer().Counts()
			fmt.Printf("Foyer: %d games, %d players\n", games, players)
		case client.NoticeTurnStarted:
			if n.Seat == c.Table().LocalSeat {
				fmt.Printf("Your turn (%ds to act)\n", n.Amount)
			}
		case client.NoticeTurnExpired:
			if n.Seat == c.Table().LocalSeat {
				fmt.Println("Turn timed out, default action submitted")
			}
		case client.NoticePotAwarded:
			fmt.Printf("Seat %d wins %d\n", n.Seat, n.Amount)
		case client.NoticeFault:
			fmt.Printf("Error: %s\n", n.Message)
		case client.NoticeConnectionLost:
			fmt.Println("Connection lost")
		case client.NoticeClosed:
			fmt.Println("Server closed the connection")
		}
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session ended", "error", err)
		ctx.Exit(1)
	}
}
