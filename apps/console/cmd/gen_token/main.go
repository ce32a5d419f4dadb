package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mints a signed admin session cookie value for local testing. The secret
// and upstream token come from the environment so the output matches a
// running console instance.
func main() {
	secret := os.Getenv("APP_SIGNING_SECRET")
	if secret == "" {
		secret = "test-secret-0123456789"
	}
	upstreamToken := os.Getenv("UPSTREAM_TOKEN")
	if upstreamToken == "" {
		upstreamToken = "local-dev-token"
	}

	claims := jwt.MapClaims{
		"username": "admin",
		"token":    upstreamToken,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(8 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	fmt.Println(signedToken)
}
