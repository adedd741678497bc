// Command devtoken mints HS256 bearer tokens for local testing.
//
//	JWT_SECRET=dev-secret-change-me devtoken -kind admin -sub root
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"sewa/internal/auth"
	"sewa/internal/config"
)

func main() {
	kind := flag.String("kind", "admin", "principal kind: hotel, ngo or admin")
	sub := flag.String("sub", "", "hotel or NGO id; any name for admins")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for none")
	flag.Parse()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *sub == "" {
		log.Fatal("-sub is required")
	}
	tok, err := auth.IssueToken(cfg.Auth.JWTSecret, auth.Principal{ID: *sub, Kind: auth.Kind(*kind)}, *ttl, time.Now())
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(tok)
}
