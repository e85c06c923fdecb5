package commands

import (
	"context"
	"fmt"

	"sobesednik/internal/config"
	"sobesednik/internal/rest"
)

// WhoAmI prints the stored profile, verified against the server when
// reachable.
func WhoAmI(ctx context.Context, cfg *config.Config) error {
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
		return fmt.Errorf("not logged in")
	}

	user := cred.User
	client := rest.New(cfg.APIBaseURL, func() (string, bool) { return cred.AccessToken, true }, nil)
	if fresh, err := client.Me(ctx); err == nil {
		user = fresh
	}

	fmt.Printf("User:         %s\n", user.Username)
	fmt.Printf("Display name: %s\n", user.DisplayName)
	if user.Email != "" {
		fmt.Printf("Email:        %s\n", user.Email)
	}
	return nil
}
