package rpmwriter

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// Signer produces a detached OpenPGP signature over data.
type Signer func(data []byte) ([]byte, error)

// LoadSigner reads an OpenPGP private key, armored or binary, from path.
// Encrypted keys are unlocked with passphrase.
func LoadSigner(path string, passphrase []byte) (Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindSigning, err, "reading signing key %s", path)
	}
	entity, err := readPrivateEntity(data)
	if err != nil {
		return nil, errs.Wrap(errs.KindSigning, err, "loading signing key %s", path)
	}
	if err := unlock(entity, passphrase); err != nil {
		return nil, errs.Wrap(errs.KindSigning, err, "unlocking signing key %s", path)
	}
	return NewSigner(entity), nil
}

// NewSigner signs with an already unlocked entity.
func NewSigner(entity *openpgp.Entity) Signer {
	return func(data []byte) ([]byte, error) {
		var sig bytes.Buffer
		if err := openpgp.DetachSign(&sig, entity, bytes.NewReader(data), nil); err != nil {
			return nil, errs.Wrap(errs.KindSigning, err, "signing package")
		}
		return sig.Bytes(), nil
	}
}

func readPrivateEntity(data []byte) (*openpgp.Entity, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		var binErr error
		if entities, binErr = openpgp.ReadKeyRing(bytes.NewReader(data)); binErr != nil {
			return nil, err
		}
	}
	for _, e := range entities {
		if e.PrivateKey != nil {
			return e, nil
		}
	}
	return nil, errors.New("no private key found")
}

func unlock(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return errors.New("key is passphrase protected and no passphrase was provided")
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("decrypting primary key: %w", err)
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey == nil || !sub.PrivateKey.Encrypted {
			continue
		}
		if len(passphrase) == 0 {
			return errors.New("subkey is passphrase protected and no passphrase was provided")
		}
		if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("decrypting subkey: %w", err)
		}
	}
	return nil
}
