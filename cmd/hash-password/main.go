package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ummahhub/community-api/internal/auth"
	"github.com/ummahhub/community-api/internal/config"
)

// Prints a bcrypt hash for AUTH_ADMIN_PASSWORD_HASH. The password is read from
// stdin so it stays out of shell history.
func main() {
	cost := flag.Int("cost", 0, "bcrypt cost, defaults to AUTH_BCRYPT_COST")
	flag.Parse()
	if *cost <= 0 {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		*cost = cfg.Auth.BcryptCost
	}

	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read password: %v", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		log.Fatal("password must not be empty")
	}

	hash, err := auth.HashPassword(password, *cost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
