package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gemsync/gemsync/app/cfg"
	"github.com/gemsync/gemsync/app/commands"
)

func main() {
	c, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	if c.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch c.Command {
	case "login":
		err = commands.Login(ctx, c)
	case "logout":
		err = commands.Logout(ctx, c)
	case "sync":
		err = commands.Sync(ctx, c)
	default:
		err = fmt.Errorf("unknown command %q", c.Command)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
