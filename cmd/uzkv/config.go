package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eon-protocol/uzkv"
	"github.com/eon-protocol/uzkv/attestor"
)

type SRSConfig struct {
	Dir      string `yaml:"dir"`
	URL      string `yaml:"url"`
	Checksum string `yaml:"checksum"`
	Size     uint64 `yaml:"size"`
}

type Config struct {
	DBPath          string    `yaml:"db_path"`
	LogLevel        string    `yaml:"log_level"`
	KeyFile         string    `yaml:"key_file"`
	MaxProofBytes   int       `yaml:"max_proof_bytes"`
	MaxPublicInputs int       `yaml:"max_public_inputs"`
	MaxBatch        int       `yaml:"max_batch"`
	TrustedSigners  []string  `yaml:"trusted_signers"`
	SRS             SRSConfig `yaml:"srs"`
}

func defaultConfig() *Config {
	limits := uzkv.DefaultLimits()
	return &Config{
		LogLevel:        "info",
		KeyFile:         "attestor.key",
		MaxProofBytes:   limits.MaxProofBytes,
		MaxPublicInputs: limits.MaxPublicInputs,
		MaxBatch:        limits.MaxBatch,
		SRS: SRSConfig{
			Dir: "srs",
		},
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (me *Config) limits() uzkv.Limits {
	return uzkv.Limits{
		MaxProofBytes:   me.MaxProofBytes,
		MaxPublicInputs: me.MaxPublicInputs,
		MaxBatch:        me.MaxBatch,
	}
}

func (me *Config) trustedAddresses() ([]attestor.Address, error) {
	addrs := make([]attestor.Address, 0, len(me.TrustedSigners))
	for _, s := range me.TrustedSigners {
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil || len(b) != 20 {
			return nil, fmt.Errorf("invalid trusted signer address %q", s)
		}
		var a attestor.Address
		copy(a[:], b)
		addrs = append(addrs, a)
	}
	return addrs, nil
}
