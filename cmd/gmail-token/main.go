// Command gmail-token obtains a Gmail refresh token for the notifier
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"railcast-service/internal/infrastructure/oauth"
	"railcast-service/pkg/logger"
)

func main() {
	clientID := flag.String("client-id", os.Getenv("GMAIL_CLIENT_ID"), "OAuth client ID")
	clientSecret := flag.String("client-secret", os.Getenv("GMAIL_CLIENT_SECRET"), "OAuth client secret")
	addr := flag.String("addr", "localhost:8090", "address for the OAuth callback server")
	flag.Parse()

	log := logger.NewLogger()
	if *clientID == "" || *clientSecret == "" {
		log.Fatal("client-id and client-secret are required")
	}

	gmailOAuth := oauth.NewGmailOAuth(*clientID, *clientSecret, "", log)
	redirectURL := "http://" + *addr + "/oauth2callback"
	state := "railcast-token"

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(context.Background(), redirectURL, r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", token.RefreshToken)
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(redirectURL, state))

	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("Callback server failed", "error", err)
	}
}
