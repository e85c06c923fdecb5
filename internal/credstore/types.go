package credstore

import (
	"sobesednik/internal/models"

	"github.com/vmihailenco/msgpack/v5"
)

// Credential is the persisted access/refresh token pair plus the
// authenticated user's profile.
type Credential struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

type dbCredential struct {
	AccessToken   string `msgpack:"accessToken"`
	RefreshToken  string `msgpack:"refreshToken"`
	UserID        string `msgpack:"userId"`
	Email         string `msgpack:"email"`
	Username      string `msgpack:"username"`
	DisplayName   string `msgpack:"displayName"`
	AvatarURL     string `msgpack:"avatarUrl"`
	OAuthProvider string `msgpack:"oauthProvider"`
}

func (c *dbCredential) MarshalBinary() (data []byte, err error) {
	type alias dbCredential
	return msgpack.Marshal((*alias)(c))
}

func (c *dbCredential) UnmarshalBinary(data []byte) error {
	type alias dbCredential
	return msgpack.Unmarshal(data, (*alias)(c))
}

func toDB(cred Credential) *dbCredential {
	return &dbCredential{
		AccessToken:   cred.AccessToken,
		RefreshToken:  cred.RefreshToken,
		UserID:        cred.User.ID,
		Email:         cred.User.Email,
		Username:      cred.User.Username,
		DisplayName:   cred.User.DisplayName,
		AvatarURL:     cred.User.AvatarURL,
		OAuthProvider: cred.User.OAuthProvider,
	}
}

func (c *dbCredential) toCredential() Credential {
	return Credential{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		User: models.User{
			ID:            c.UserID,
			Email:         c.Email,
			Username:      c.Username,
			DisplayName:   c.DisplayName,
			AvatarURL:     c.AvatarURL,
			OAuthProvider: c.OAuthProvider,
		},
	}
}
