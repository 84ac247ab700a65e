package config

import (
	"flag"
	"os"
	"time"

	"github.com/anypart/marketplace/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      admin access token validity, minutes
//	-r int      buyer/seller session validity, hours
//	-x          enforce credit token expiry
//	-m string   PayHere merchant id
//	-p string   PayHere merchant secret
//	-w string   public app base URL
//	-u string   S3 root user
//	-o string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers (minutes or hours) and then
//     converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-x", "-m", "-p", "-w", "-u", "-o", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	sessionValidityDuration := fs.Int("r", int(config.SessionValidityDuration.Hours()), "session_validity_duration (in hours)")

	fs.BoolVar(&config.EnforceCreditExpiry, "x", config.EnforceCreditExpiry, "enforce credit token expiry")

	fs.StringVar(&config.PayHereMerchantID, "m", config.PayHereMerchantID, "PayHere merchant id")
	fs.StringVar(&config.PayHereSecret, "p", config.PayHereSecret, "PayHere merchant secret")
	fs.StringVar(&config.AppBaseURL, "w", config.AppBaseURL, "public app base URL")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "o", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.SessionValidityDuration = time.Duration(*sessionValidityDuration) * time.Hour
}
