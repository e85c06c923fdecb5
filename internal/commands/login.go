package commands

import (
	"context"
	"fmt"

	"sobesednik/internal/config"
	"sobesednik/internal/credstore"
	"sobesednik/internal/rest"
)

// LoginURL prints the Google consent URL to open in a browser. The
// callback page shows the code to paste into -login.
func LoginURL(ctx context.Context, cfg *config.Config) error {
	client := rest.New(cfg.APIBaseURL, noToken, nil)

	authURL, err := client.GoogleAuthURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth URL: %w. Is the server running?", err)
	}

	fmt.Println("Open this URL in a browser and authorize:")
	fmt.Printf("\n  %s\n\n", authURL)
	fmt.Println("Then run: sobesednik -login <code>")
	return nil
}

// Login exchanges the OAuth callback code and persists the credential.
func Login(ctx context.Context, cfg *config.Config, code string) error {
	vault, err := openVault(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = vault.Close() }()

	client := rest.New(cfg.APIBaseURL, noToken, nil)
	resp, err := client.GoogleCallback(ctx, code)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	err = vault.Save(credstore.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", resp.User.DisplayName, resp.User.Username)
	return nil
}

func noToken() (string, bool) { return "", false }

func openVault(cfg *config.Config) (*credstore.Store, error) {
	key, err := credstore.LoadOrCreateKey(cfg.VaultKeyFile)
	if err != nil {
		return nil, err
	}
	return credstore.Open(cfg.VaultFile, key)
}
