package config

import (
	"flag"
	"math"
	"os"

	"github.com/dmitrijs2005/identitystore/internal/flagx"
)

// ValueFlags lists every flag that takes a value, the config file flags
// included. The command dispatcher uses it to tell flag values from
// positional arguments.
var ValueFlags = []string{"-c", "-config", "-d", "-s", "-am", "-at", "-ap", "-u", "-p", "-b", "-g", "-e", "-av", "-log-level", "-log-format", "-authz"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string           PostgreSQL DSN
//	-s string           token HMAC secret key
//	-am uint            argon2id memory, KiB
//	-at uint            argon2id iterations
//	-ap uint            argon2id parallelism (1..255)
//	-u string           S3 root user
//	-p string           S3 root password
//	-b string           S3 bucket name
//	-g string           S3 region
//	-e string           S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-av duration        avatar URL validity (e.g., "90s", "1h")
//	-log-level string   debug, info, warn or error
//	-log-format string  json or text
//	-authz string       role or blanket
//
// Commands and their arguments are filtered out with flagx.FilterArgs before
// parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], ValueFlags[2:])

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	memory := fs.Uint("am", uint(config.Argon2MemoryKiB), "argon2id memory (in KiB)")
	iterations := fs.Uint("at", uint(config.Argon2Iterations), "argon2id iterations")
	parallelism := fs.Uint("ap", uint(config.Argon2Parallelism), "argon2id parallelism")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.DurationVar(&config.AvatarURLValidity, "av", config.AvatarURLValidity, "avatar URL validity")

	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.AuthzMode, "authz", config.AuthzMode, "authorization mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *memory > math.MaxUint32 || *iterations > math.MaxUint32 || *parallelism == 0 || *parallelism > math.MaxUint8 {
		panic("argon2id parameters out of range")
	}
	if config.AuthzMode != "" && config.AuthzMode != AuthzRole && config.AuthzMode != AuthzBlanket {
		panic("unknown authorization mode " + config.AuthzMode)
	}

	config.Argon2MemoryKiB = uint32(*memory)
	config.Argon2Iterations = uint32(*iterations)
	config.Argon2Parallelism = uint8(*parallelism)
}
