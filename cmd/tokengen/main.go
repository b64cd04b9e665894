// Command tokengen mints access tokens for the API.  The service
// has no login flow; crew and viewer tokens are issued out of band
// with this tool and distributed directly.
//
//	tokengen -actor maria -role crew -ttl 720
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/summitops/guest-transport/internal/middleware"
	"github.com/summitops/guest-transport/internal/utils"
)

func main() {
	_ = godotenv.Load()

	actor := flag.String("actor", "", "subject recorded in audit entries (required)")
	role := flag.String("role", middleware.RoleViewer, "crew or viewer")
	ttl := flag.Int("ttl", 720, "token lifetime in minutes")
	flag.Parse()

	if *actor == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != middleware.RoleCrew && *role != middleware.RoleViewer {
		log.Fatalf("unknown role %q; use crew or viewer", *role)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	tok, err := utils.NewAccessToken(secret, *actor, *role, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
