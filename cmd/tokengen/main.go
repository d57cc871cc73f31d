// Command tokengen signs an access token for a user id, for scripting and
// manual testing against a running server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"teamwork/config"
	"teamwork/token"
)

func main() {
	user := flag.String("user", "", "User id to put in the token")
	key := flag.String("key", "", "Signing key; defaults to AUTH_JWT_SECRET from the environment or .env")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *user == "" {
		fmt.Println("--user is required")
		os.Exit(1)
	}

	secret := *key
	if secret == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Println("no --key given and config could not be loaded:", err)
			os.Exit(1)
		}
		secret = cfg.Auth.JWTSecret
	}

	ss, err := token.NewIssuer(secret, *ttl).Issue(*user)
	if err != nil {
		fmt.Println("failed to sign token:", err)
		os.Exit(1)
	}

	fmt.Println(ss)
}
