package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"inspectoradf/pkg/logger"
)

var (
	name    = "inspect"
	version = "v0.0.1-default"

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    name,
		Version: version,
		Usage:   "Offline forensic checks for photos, same scoring as the bot",
		Flags: []cli.Flag{
			debugFlag,
		},
		Commands: []*cli.Command{
			analyzeCmd,
			archiveCmd,
		},
	}
}

func newLogger(c *cli.Context) *zap.Logger {
	level := "warn"
	if c.Bool(debugFlag.Name) {
		level = "debug"
	}

	log, err := logger.New(level)
	if err != nil {
		return zap.NewNop()
	}
	return log
}
