// Command devtoken mints development session tokens against a local
// Ed25519 keypair, so the authorization core can be exercised without a
// running identity provider.
//
// Usage:
//
//	devtoken -key devkeys/session_ed25519.pem -sub usr_123 -email dev@example.com
//	devtoken -key devkeys/session_ed25519.pem -sub usr_456 -act freelancer
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/crewplane/crewplane/pkg/jwtx"
)

func main() {
	var (
		keyFile  = flag.String("key", "devkeys/session_ed25519.pem", "Ed25519 private key PEM (PKCS8)")
		kid      = flag.String("kid", "dev-1", "key id to place in the token header")
		sub      = flag.String("sub", "", "subject uid (required)")
		email    = flag.String("email", "", "email claim")
		act      = flag.String("act", "", "actor claim (member, freelancer)")
		ttl      = flag.Duration("ttl", jwtx.DefaultSessionTTL, "token lifetime")
		issuer   = flag.String("issuer", "crewplane-identity", "iss claim")
		audience = flag.String("aud", "", "comma-separated aud values")
	)
	flag.Parse()

	if *sub == "" {
		flag.Usage()
		log.Fatal("devtoken: -sub is required")
	}

	pemKey, err := os.ReadFile(*keyFile)
	if err != nil {
		log.Fatalf("devtoken: read key: %v", err)
	}

	signer, err := jwtx.NewSignerEdDSA(*kid, pemKey)
	if err != nil {
		log.Fatalf("devtoken: parse key: %v", err)
	}

	var aud []string
	for _, a := range strings.Split(*audience, ",") {
		if a = strings.TrimSpace(a); a != "" {
			aud = append(aud, a)
		}
	}

	claims := jwtx.NewSessionClaims(*sub, *email, *act, *ttl, *issuer, aud, time.Now())

	token, err := signer.Sign(claims)
	if err != nil {
		log.Fatalf("devtoken: sign: %v", err)
	}

	fmt.Println(token)
}
