package commands

import (
	"context"
	"fmt"

	"sobesednik/internal/config"
	"sobesednik/internal/rest"
)

// Logout invalidates the server-side session and clears the vault. The
// local credential is cleared even when the server call fails.
func Logout(ctx context.Context, cfg *config.Config) error {
	vault, err := openVault(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = vault.Close() }()

	cred, ok, err := vault.Load()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}

	client := rest.New(cfg.APIBaseURL, func() (string, bool) { return cred.AccessToken, true }, nil)
	if err := client.Logout(ctx); err != nil {
		fmt.Printf("Server logout failed (%v), clearing local credential anyway.\n", err)
	}

	if err := vault.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
