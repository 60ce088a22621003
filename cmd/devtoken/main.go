// Command devtoken mints an owner access token signed with the server secret.
// It stands in for the identity provider in development.
//
//	devtoken -s secretKey -t 1440 -owner 6f1c...
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vinscanner/internal/server/auth"
	"github.com/dmitrijs2005/vinscanner/internal/server/config"
)

func main() {
	owner, args := splitOwner(os.Args[1:])

	cfg, err := config.Load(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if owner == "" {
		owner = uuid.NewString()
	}

	tok, err := auth.GenerateToken(owner, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Fprintln(os.Stderr, "owner:", owner)
	fmt.Println(tok)
}

// splitOwner pulls -owner out of args so the rest can go to the server
// config parser.
func splitOwner(args []string) (string, []string) {
	var owner string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := strings.TrimPrefix(args[i], "-")
		if a == "-owner" || a == "owner" {
			if i+1 < len(args) {
				owner = args[i+1]
				i++
			}
			continue
		}
		if v, ok := strings.CutPrefix(strings.TrimPrefix(a, "-"), "owner="); ok {
			owner = v
			continue
		}
		rest = append(rest, args[i])
	}
	return owner, rest
}
