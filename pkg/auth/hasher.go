package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/emailauth/pkg/validator"
)

// PasswordHasher hashes passwords and verifies them against stored hashes.
// Hash enforces the password policy and fails with ErrWeakPassword.
// Verify never errors: malformed hashes simply do not match.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

func checkPolicy(password string, policy validator.PasswordStrengthConfig) error {
	if err := validator.Apply(validator.PasswordStrength("password", password, policy)...); err != nil {
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}
	return nil
}

// BcryptHasher is the default hasher.
type BcryptHasher struct {
	cost   int
	policy validator.PasswordStrengthConfig
}

type BcryptOption func(*BcryptHasher)

func WithBcryptCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		h.cost = cost
	}
}

func WithBcryptPolicy(policy validator.PasswordStrengthConfig) BcryptOption {
	return func(h *BcryptHasher) {
		h.policy = policy
	}
}

func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{
		cost:   bcrypt.DefaultCost,
		policy: validator.DefaultPasswordStrength(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := checkPolicy(password, h.policy); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", ErrWeakPassword, err)
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Argon2Params are the argon2id cost parameters encoded into every hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params follows the OWASP baseline: 64 MiB, one pass, four lanes.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Argon2idHasher stores hashes in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	params Argon2Params
	policy validator.PasswordStrengthConfig
}

type Argon2Option func(*Argon2idHasher)

func WithArgon2Params(p Argon2Params) Argon2Option {
	return func(h *Argon2idHasher) {
		h.params = p
	}
}

func WithArgon2Policy(policy validator.PasswordStrengthConfig) Argon2Option {
	return func(h *Argon2idHasher) {
		h.policy = policy
	}
}

func NewArgon2idHasher(opts ...Argon2Option) *Argon2idHasher {
	policy := validator.DefaultPasswordStrength()
	// argon2 has no input length limit; keep a generous cap against hashing huge inputs.
	policy.MaxLength = 1024
	h := &Argon2idHasher{
		params: DefaultArgon2Params(),
		policy: policy,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	if err := checkPolicy(password, h.policy); err != nil {
		return "", err
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if threads == 0 || threads > 255 || iterations == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
