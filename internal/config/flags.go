package config

import (
	"flag"
	"os"
	"time"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-u string   base URL of the auth API
//	-t int      request timeout in seconds
//	-r int      number of retries for transient failures
//	-v          enable SDK logging
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-t", "-r", "-v"})

	fs := flag.NewFlagSet("auth", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "base URL of the auth API")
	timeoutSec := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "retry count for transient failures")
	fs.BoolVar(&cfg.LoggingEnabled, "v", cfg.LoggingEnabled, "enable logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeoutSec) * time.Second
}
