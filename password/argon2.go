package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

// Hasher is the one-way hash seam used by the login flow. The engine
// treats hashing as a black box: it only ever calls Hash on account
// creation paths and Verify on login.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// Config carries the argon2id cost parameters.
type Config struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns moderate interactive-login costs.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 hashes passwords with argon2id and encodes them in PHC string
// format, so the parameters travel with the hash and can be tightened
// later without invalidating stored credentials.
type Argon2 struct {
	config Config
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if cfg.Memory < 8*1024 || cfg.Time < 1 || cfg.Parallelism < 1 {
		return nil, errors.New("password: argon2 cost parameters too low")
	}
	if cfg.SaltLength < 16 || cfg.KeyLength < 16 {
		return nil, errors.New("password: salt and key must be at least 16 bytes")
	}
	return &Argon2{config: cfg}, nil
}

// Hash derives an argon2id hash of plain under a fresh random salt.
func (a *Argon2) Hash(plain string) (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(plain), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	), nil
}

// Verify recomputes the hash under the parameters stored in encoded and
// compares in constant time. Any parse failure reports false.
func (a *Argon2) Verify(plain, encoded string) bool {
	memory, time, parallelism, salt, hash, err := parsePHC(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, time, memory, parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(computed, hash) == 1
}

func parsePHC(encoded string) (memory, time uint32, parallelism uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return 0, 0, 0, nil, nil, errors.New("password: invalid PHC format")
	}

	version, convErr := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if convErr != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("password: unsupported argon2 version")
	}

	for _, pair := range strings.Split(parts[3], ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return 0, 0, 0, nil, nil, errors.New("password: invalid parameter format")
		}
		n, convErr := strconv.ParseUint(value, 10, 32)
		if convErr != nil {
			return 0, 0, 0, nil, nil, errors.New("password: invalid parameter value")
		}
		switch key {
		case "m":
			memory = uint32(n)
		case "t":
			time = uint32(n)
		case "p":
			parallelism = uint8(n)
		default:
			return 0, 0, 0, nil, nil, errors.New("password: unknown parameter")
		}
	}
	if memory == 0 || time == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, errors.New("password: incomplete parameters")
	}

	salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, errors.New("password: invalid salt encoding")
	}
	hash, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return 0, 0, 0, nil, nil, errors.New("password: invalid hash encoding")
	}

	return memory, time, parallelism, salt, hash, nil
}
