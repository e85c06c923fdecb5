package credstore

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/nacl/secretbox"
)

var bucketCredentials = []byte("credentials")

var credentialKey = []byte("current")

var errSealedBoxTooShort = errors.New("sealed credential record too short")

// Store persists the single process-wide credential in a bbolt file.
// Records are sealed with a machine-local secretbox key so tokens are
// not readable from the raw database file.
type Store struct {
	db  *bbolt.DB
	key [32]byte
}

func Open(path string, key [32]byte) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential vault: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCredentials)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create credential bucket: %w", err)
	}

	return &Store{db: db, key: key}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored credential.
func (s *Store) Save(cred Credential) error {
	data, err := toDB(cred).MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], data, &nonce, &s.key)

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCredentials).Put(credentialKey, sealed)
	})
}

// Load returns the stored credential, or ok=false when none is stored.
func (s *Store) Load() (Credential, bool, error) {
	var sealed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCredentials).Get(credentialKey); v != nil {
			sealed = append(sealed, v...)
		}
		return nil
	})
	if err != nil {
		return Credential{}, false, err
	}
	if sealed == nil {
		return Credential{}, false, nil
	}

	if len(sealed) < 24 {
		return Credential{}, false, errSealedBoxTooShort
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	data, ok := secretbox.Open(nil, sealed[24:], &nonce, &s.key)
	if !ok {
		return Credential{}, false, errors.New("failed to unseal credential record")
	}

	var dbCred dbCredential
	if err := dbCred.UnmarshalBinary(data); err != nil {
		return Credential{}, false, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return dbCred.toCredential(), true, nil
}

// Clear removes the stored credential. Clearing an empty vault is a no-op.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCredentials).Delete(credentialKey)
	})
}

// LoadOrCreateKey reads the vault key file, generating one on first run.
func LoadOrCreateKey(path string) ([32]byte, error) {
	var key [32]byte

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) != len(key) {
			return key, fmt.Errorf("vault key file %s has wrong size %d", path, len(data))
		}
		copy(key[:], data)
		return key, nil
	case os.IsNotExist(err):
		if _, err := rand.Read(key[:]); err != nil {
			return key, err
		}
		if err := os.WriteFile(path, key[:], 0600); err != nil {
			return key, fmt.Errorf("failed to write vault key file: %w", err)
		}
		return key, nil
	default:
		return key, err
	}
}
