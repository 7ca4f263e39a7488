// Package keys maps named test identities to the credential material used to
// derive their signing wallets.
package keys

import (
	"errors"
	"fmt"
	"sort"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Identity names shipped with the project.
const (
	CustomTester1 = "custom_tester_1"
	CustomTester2 = "custom_tester_2"
	Bombay        = "bombay"
)

// ErrInvalidCredential is returned when an identity has neither or both of a
// mnemonic and a private key.
var ErrInvalidCredential = errors.New("exactly one of mnemonic or private key must be set")

// validate is shared; validator caches struct metadata per instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Kind tags which variant a Credential holds.
type Kind int

const (
	KindMnemonic Kind = iota + 1
	KindPrivateKey
)

func (k Kind) String() string {
	switch k {
	case KindMnemonic:
		return "mnemonic"
	case KindPrivateKey:
		return "private_key"
	default:
		return "unknown"
	}
}

// Credential is either a BIP39 mnemonic or a raw private key, never both.
type Credential struct {
	kind   Kind
	secret string
}

// Mnemonic returns a mnemonic credential.
func Mnemonic(phrase string) Credential {
	return Credential{kind: KindMnemonic, secret: phrase}
}

// PrivateKey returns a raw private key credential (hex or base64).
func PrivateKey(key string) Credential {
	return Credential{kind: KindPrivateKey, secret: key}
}

// Kind returns the variant tag.
func (c Credential) Kind() Kind { return c.kind }

// Mnemonic returns the seed phrase when c is a mnemonic credential.
func (c Credential) Mnemonic() (string, bool) {
	return c.secret, c.kind == KindMnemonic
}

// PrivateKey returns the key material when c is a private key credential.
func (c Credential) PrivateKey() (string, bool) {
	return c.secret, c.kind == KindPrivateKey
}

// String never prints the secret.
func (c Credential) String() string {
	return c.kind.String() + "(redacted)"
}

// Source is the raw, unvalidated credential material for one identity, as read
// from the environment or from config.yaml.
type Source struct {
	Mnemonic   string `env:"SEED_PHRASE" yaml:"mnemonic" validate:"required_without=PrivateKey,excluded_with=PrivateKey"`
	PrivateKey string `env:"PRIVATE_KEY" yaml:"private_key" validate:"required_without=Mnemonic,excluded_with=Mnemonic"`
}

// Credential validates s and returns the matching variant.
func (s Source) Credential() (Credential, error) {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Credential{}, ErrInvalidCredential
		}
		return Credential{}, fmt.Errorf("validate credential: %w", err)
	}
	if s.Mnemonic != "" {
		return Mnemonic(s.Mnemonic), nil
	}
	return PrivateKey(s.PrivateKey), nil
}

// envSources binds each shipped identity to its single environment variable.
// The variable name fixes the credential kind.
type envSources struct {
	CustomTester1 string `env:"TEST1_SEED_PHRASE"`
	CustomTester2 string `env:"TEST2_PRIVATE_KEY"`
	Bombay        string `env:"BOMBAY_SEED_PHRASE"`
}

// Set maps identity names to credentials. It is built once at startup and
// handed to whatever derives wallets from it.
type Set map[string]Credential

// Get returns the credential for name.
func (s Set) Get(name string) (Credential, bool) {
	c, ok := s[name]
	return c, ok
}

// Names returns identity names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromEnv reads the shipped identities from the process environment:
// custom_tester_1 from TEST1_SEED_PHRASE, custom_tester_2 from
// TEST2_PRIVATE_KEY and bombay from BOMBAY_SEED_PHRASE. Values are taken
// verbatim. An unset variable is an error naming the identity.
func FromEnv() (Set, error) {
	var src envSources
	if err := env.Parse(&src); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return FromSources(map[string]Source{
		CustomTester1: {Mnemonic: src.CustomTester1},
		CustomTester2: {PrivateKey: src.CustomTester2},
		Bombay:        {Mnemonic: src.Bombay},
	})
}

// FromSources validates raw sources, typically the identities section of
// config.yaml.
func FromSources(sources map[string]Source) (Set, error) {
	set := make(Set, len(sources))
	var errs []error

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cred, err := sources[name].Credential()
		if err != nil {
			errs = append(errs, fmt.Errorf("identity %q: %w", name, err))
			continue
		}
		set[name] = cred
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return set, nil
}
