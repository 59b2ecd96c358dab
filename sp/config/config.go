package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/bertrandmartel/yummy/sp/codec"
	"github.com/bertrandmartel/yummy/sp/kdf"
	"github.com/bertrandmartel/yummy/sp/session"
	"gopkg.in/go-playground/validator.v9"
)

const (
	KdfArgon2id = "argon2id"
	KdfScrypt   = "scrypt"
)

type Kdf struct {
	Algorithm string           `json:"algorithm" validate:"omitempty,oneof=argon2id scrypt"`
	Argon2    kdf.Argon2Params `json:"argon2"`
	Scrypt    kdf.ScryptParams `json:"scrypt"`
}

type Config struct {
	Key    string                `json:"key" validate:"required"`
	Secret string                `json:"secret" validate:"required"`
	Cookie session.CookieOptions `json:"cookie"`
	Kdf    Kdf                   `json:"kdf"`
	IV     codec.IVStrategy      `json:"iv" validate:"omitempty,oneof=random derived"`
}

// Defaults returns a config with everything but the secret filled in.
func Defaults() *Config {
	return &Config{
		Key:    codec.DefaultCookieName,
		Cookie: session.CookieOptions{Path: session.DefaultCookiePath},
		Kdf: Kdf{
			Algorithm: KdfArgon2id,
			Argon2:    kdf.DefaultArgon2Params(),
			Scrypt:    kdf.DefaultScryptParams(),
		},
		IV: codec.IVRandom,
	}
}

// ParseConfig reads a JSON config file over the defaults.
func ParseConfig(path string) (config *Config, err error) {
	jsonFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer jsonFile.Close()
	byteValue, err := ioutil.ReadAll(jsonFile)
	if err != nil {
		return nil, err
	}
	ret := Defaults()
	if err := json.Unmarshal(byteValue, ret); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ret, nil
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// DeriveFunc returns the key derivation selected by the config.
func (c *Config) DeriveFunc() kdf.DeriveFunc {
	switch c.Kdf.Algorithm {
	case KdfScrypt:
		return kdf.Scrypt(c.Kdf.Scrypt)
	case KdfArgon2id:
		return kdf.Argon2(c.Kdf.Argon2)
	}
	return nil
}
