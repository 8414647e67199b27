// Command admintoken mints an operator token for the admin review API and
// prints the bcrypt hash to configure as ADMIN_TOKEN_HASH.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"surebet/pkg/platform/secrets"
)

func main() {
	var token string
	var cost int

	flag.StringVar(&token, "token", "", "Existing token to hash (a random one is generated when empty)")
	flag.IntVar(&cost, "cost", 0, "bcrypt cost (0 uses the library default)")
	flag.Parse()

	if token == "" {
		generated, err := secrets.Generate()
		if err != nil {
			log.Fatalf("generate token: %v", err)
		}
		token = generated
		fmt.Fprintf(os.Stderr, "token (give to the operator, shown once): %s\n", token)
	}

	hash, err := secrets.Hash(token, cost)
	if err != nil {
		log.Fatalf("hash token: %v", err)
	}
	fmt.Println(hash)
}
