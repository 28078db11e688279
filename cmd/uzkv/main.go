// uzkv is the command line front end of the universal verifier: key
// registration, proof verification, attestation and the supporting
// key and SRS management.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eon-protocol/uzkv"
	"github.com/eon-protocol/uzkv/attestor"
	"github.com/eon-protocol/uzkv/plonk"
	"github.com/eon-protocol/uzkv/registry"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "uzkv",
		Short:         "universal zero-knowledge proof verifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the yaml config file")
	root.AddCommand(registerCmd(), verifyCmd(), batchVerifyCmd(), attestCmd(), keygenCmd(), srsCmd(), costCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger(), nil
}

// openEngine builds the engine over the configured store. The returned
// close func is a no-op for the in-memory store.
func openEngine(cfg *Config, log zerolog.Logger) (*uzkv.Engine, func() error, error) {
	var store registry.Store
	closer := func() error { return nil }
	if cfg.DBPath != "" {
		bolt, err := registry.OpenBoltStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		store, closer = bolt, bolt.Close
	} else {
		store = registry.NewMemStore()
	}
	eng, err := uzkv.NewEngine(registry.New(store, log), cfg.limits(), log)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return eng, closer, nil
}

func parseScheme(s string) (uzkv.Scheme, error) {
	switch strings.ToLower(s) {
	case "groth16":
		return uzkv.Groth16, nil
	case "plonk":
		return uzkv.Plonk, nil
	case "stark":
		return uzkv.Stark, nil
	default:
		return 0, fmt.Errorf("unknown scheme %q", s)
	}
}

func parseHash(s string) ([32]byte, error) {
	var hash [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(b) != 32 {
		return hash, fmt.Errorf("invalid key hash %q", s)
	}
	copy(hash[:], b)
	return hash, nil
}

func parseInputArgs(args []string) ([][]byte, error) {
	inputs := make([][]byte, len(args))
	for i, a := range args {
		b, err := hex.DecodeString(strings.TrimPrefix(a, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid public input %q", a)
		}
		inputs[i] = b
	}
	return inputs, nil
}

func registerCmd() *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "register <key-file>",
		Short: "register a verification key and print its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			sch, err := parseScheme(scheme)
			if err != nil {
				return err
			}
			key, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			eng, closer, err := openEngine(cfg, log)
			if err != nil {
				return err
			}
			defer closer()
			hash, err := eng.Register(sch, key)
			if err != nil {
				return err
			}
			fmt.Printf("0x%x\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&scheme, "scheme", "s", "", "proof scheme: groth16, plonk or stark")
	cmd.MarkFlagRequired("scheme")
	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <vk-hash> <proof-file> [public-input-hex...]",
		Short: "verify a proof against a registered key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}
			proof, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			inputs, err := parseInputArgs(args[2:])
			if err != nil {
				return err
			}
			eng, closer, err := openEngine(cfg, log)
			if err != nil {
				return err
			}
			defer closer()
			ok, err := eng.Verify(hash, proof, inputs)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("invalid")
				os.Exit(2)
			}
			fmt.Println("valid")
			return nil
		},
	}
}

// batchItem is one entry of the batch-verify manifest.
type batchItem struct {
	VKHash    string   `yaml:"vk_hash"`
	ProofFile string   `yaml:"proof_file"`
	Inputs    []string `yaml:"inputs"`
}

func batchVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch-verify <manifest.yaml>",
		Short: "verify a batch of proofs described by a yaml manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var items []batchItem
			if err := yaml.Unmarshal(buf, &items); err != nil {
				return fmt.Errorf("parsing manifest: %w", err)
			}
			hashes := make([][32]byte, len(items))
			proofs := make([][]byte, len(items))
			inputs := make([][][]byte, len(items))
			for i, item := range items {
				if hashes[i], err = parseHash(item.VKHash); err != nil {
					return err
				}
				if proofs[i], err = os.ReadFile(item.ProofFile); err != nil {
					return err
				}
				if inputs[i], err = parseInputArgs(item.Inputs); err != nil {
					return err
				}
			}
			eng, closer, err := openEngine(cfg, log)
			if err != nil {
				return err
			}
			defer closer()
			results, err := eng.BatchVerify(cmd.Context(), hashes, proofs, inputs)
			if err != nil {
				return err
			}
			allValid := true
			for i, ok := range results {
				status := "valid"
				if !ok {
					status, allValid = "invalid", false
				}
				fmt.Printf("%d: %s %s\n", i, items[i].ProofFile, status)
			}
			if !allValid {
				os.Exit(2)
			}
			return nil
		},
	}
}

func attestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attest <vk-hash> <proof-file> [public-input-hex...]",
		Short: "verify a proof and sign an attestation of the result",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}
			proof, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			inputs, err := parseInputArgs(args[2:])
			if err != nil {
				return err
			}
			keyHex, err := os.ReadFile(cfg.KeyFile)
			if err != nil {
				return fmt.Errorf("reading attestation key: %w", err)
			}
			keyBytes, err := hex.DecodeString(strings.TrimSpace(string(keyHex)))
			if err != nil {
				return fmt.Errorf("attestation key is not hex: %w", err)
			}
			signer, err := attestor.SignerFromBytes(keyBytes)
			if err != nil {
				return err
			}
			ledger := attestor.NewLedger(log)
			ledger.Trust(signer.Address())
			trusted, err := cfg.trustedAddresses()
			if err != nil {
				return err
			}
			for _, a := range trusted {
				ledger.Trust(a)
			}
			eng, closer, err := openEngine(cfg, log)
			if err != nil {
				return err
			}
			defer closer()

			svc := &attestor.Service{Engine: eng, Signer: signer, Ledger: ledger}
			ok, rec, err := svc.VerifyAndAttest(hash, proof, inputs)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("invalid")
				os.Exit(2)
			}
			fmt.Printf("proof:     0x%x\n", rec.ProofHash)
			fmt.Printf("signer:    %s\n", rec.Signer)
			fmt.Printf("signature: 0x%x\n", signer.Sign(rec.ProofHash))
			return nil
		},
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "generate an attestation key and write it to the key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.KeyFile); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", cfg.KeyFile)
			}
			signer, err := attestor.GenerateSigner()
			if err != nil {
				return err
			}
			keyHex := hex.EncodeToString(signer.Bytes())
			if err := os.WriteFile(cfg.KeyFile, []byte(keyHex+"\n"), 0o600); err != nil {
				return err
			}
			fmt.Printf("address: %s\n", signer.Address())
			return nil
		},
	}
}

func srsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "srs",
		Short: "fetch and validate the structured reference string",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.SRS.URL == "" || cfg.SRS.Checksum == "" {
				return fmt.Errorf("srs url and checksum must be configured")
			}
			srs, err := plonk.LoadSRS(cfg.SRS.Dir, cfg.SRS.URL, cfg.SRS.Checksum, cfg.SRS.Size)
			if err != nil {
				return err
			}
			fmt.Printf("srs ready with %d G1 points\n", len(srs.Pk.G1))
			return nil
		},
	}
}

func costCmd() *cobra.Command {
	var scheme string
	var nbInputs, proofBytes int
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "estimate the verification cost of a proof",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := parseScheme(scheme)
			if err != nil {
				return err
			}
			fmt.Println(uzkv.EstimateCost(sch, nbInputs, proofBytes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&scheme, "scheme", "s", "", "proof scheme: groth16, plonk or stark")
	cmd.Flags().IntVarP(&nbInputs, "inputs", "i", 0, "number of public inputs")
	cmd.Flags().IntVarP(&proofBytes, "bytes", "b", 0, "proof size in bytes")
	cmd.MarkFlagRequired("scheme")
	return cmd
}
