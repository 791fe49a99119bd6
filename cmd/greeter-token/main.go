// Command greeter-token mints kiosk tokens for deployments that set
// auth.jwt_secret.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/domains/auth"
)

func main() {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("greeter-token", pflag.ExitOnError)
	config.BindFlags(fs)
	subject := fs.String("subject", "kiosk", "token subject")
	kiosk := fs.String("kiosk", "", "kiosk identifier stored in the token")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if !tokens.Enabled() {
		fmt.Fprintln(os.Stderr, "auth.jwt_secret (JWT_SECRET) is not set")
		os.Exit(1)
	}

	token, err := tokens.Issue(*subject, *kiosk, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
