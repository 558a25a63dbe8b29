package config

import (
	"flag"
	"os"

	"github.com/dkravetz/sixtyfix/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   external base URL for links
//	-d string   PostgreSQL DSN
//	-s string   HMAC secret key
//	-v bool     require email verification
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-s", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "external base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.RequireEmailVerification, "v", config.RequireEmailVerification, "require email verification")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
