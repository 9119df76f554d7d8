// devtoken はローカル確認用のアクセストークンを出力する。
//
//	go run ./cmd/devtoken -user 1 -role Admin
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
)

func main() {
	userID := flag.Int64("user", 1, "user id (sub)")
	role := flag.String("role", string(model.RoleCustomer), "Customer or Admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	r := model.Role(*role)
	if r != model.RoleCustomer && r != model.RoleAdmin {
		fmt.Fprintf(os.Stderr, "invalid role: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.LoadWithDotenv(".env", "../.env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tok, exp, err := middleware.IssueToken(cfg.JWTSecret, *userID, r, time.Now(), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
	fmt.Fprintf(os.Stderr, "expires at %s\n", exp.Format(time.RFC3339))
}
