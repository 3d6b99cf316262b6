// Command uspack is the host-side companion to the appliance: it packages
// payload.bin, interpreter.wasm, and sign.cbor onto a directory standing in
// for a USB medium, and can additionally generate seed/pubkey fixtures for
// rehearsing the appliance's provisioning flow. It follows
// cmd/synnergy/main.go's root-command-with-subcommands layout.
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
	"github.com/airgap/signer-appliance/internal/xcrypto"
)

const (
	payloadFileName     = "payload.bin"
	interpreterFileName = "interpreter.wasm"
	signFileName        = "sign.cbor"
)

func main() {
	rootCmd := &cobra.Command{Use: "uspack"}
	rootCmd.AddCommand(packCmd())
	rootCmd.AddCommand(fixtureCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func packCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "write payload.bin, interpreter.wasm, and sign.cbor to --output",
		RunE: func(cmd *cobra.Command, args []string) error {
			payloadPath, _ := cmd.Flags().GetString("payload")
			interpreterPath, _ := cmd.Flags().GetString("interpreter")
			outputDir, _ := cmd.Flags().GetString("output")
			label, _ := cmd.Flags().GetString("label")
			algorithm, _ := cmd.Flags().GetString("algorithm")
			keySlot, _ := cmd.Flags().GetUint8("key-slot")
			signable, _ := cmd.Flags().GetString("signable")
			outputMode, _ := cmd.Flags().GetString("output-mode")

			algo, err := parseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			sig, err := parseSignable(signable)
			if err != nil {
				return err
			}
			out, err := parseOutputMode(outputMode)
			if err != nil {
				return err
			}

			descriptor := spec.Descriptor{
				Label:     label,
				Signable:  sig,
				Algorithm: algo,
				KeySlot:   keySlot,
				Output:    out,
			}
			cborBytes, err := spec.Encode(descriptor)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return apperr.Wrap(apperr.UsbIo, err, "create output directory")
			}
			if err := copyFile(payloadPath, filepath.Join(outputDir, payloadFileName)); err != nil {
				return err
			}
			if err := copyFile(interpreterPath, filepath.Join(outputDir, interpreterFileName)); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outputDir, signFileName), cborBytes, 0o644); err != nil {
				return apperr.Wrap(apperr.UsbIo, err, "write sign.cbor")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "usb contents written to %s\n", outputDir)
			return nil
		},
	}
	cmd.Flags().String("payload", "", "raw transaction payload file")
	cmd.Flags().String("interpreter", "", "wasm interpreter module")
	cmd.Flags().String("output", "", "output directory (will contain payload.bin, interpreter.wasm, sign.cbor)")
	cmd.Flags().String("label", "Transaction", "human-readable label for the transaction")
	cmd.Flags().String("algorithm", "ed25519", "signing algorithm: ed25519, secp256k1-ecdsa, secp256k1-schnorr")
	cmd.Flags().Uint8("key-slot", 0, "key slot in the device secure element")
	cmd.Flags().String("signable", "whole", "signable mode: whole, hash-blake2b, hash-sha256")
	cmd.Flags().String("output-mode", "signature-only", "output mode: signature-only, append, wasm-assemble")
	for _, name := range []string{"payload", "interpreter", "output"} {
		cmd.MarkFlagRequired(name) //nolint:errcheck
	}
	return cmd
}

// fixtureCmd generates a fresh seed/pubkey pair for rehearsing the
// appliance's recovery-from-seed provisioning path without a real secure
// element, mirroring the original prototype's usb-pack convenience flags.
func fixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "generate a seed.bin/pubkey.bin pair for provisioning rehearsal",
		RunE: func(cmd *cobra.Command, args []string) error {
			seedPath, _ := cmd.Flags().GetString("seed")
			pubkeyPath, _ := cmd.Flags().GetString("pubkey")
			algorithm, _ := cmd.Flags().GetString("algorithm")

			algo, err := parseAlgorithm(algorithm)
			if err != nil {
				return err
			}

			seed := make([]byte, xcrypto.Ed25519SeedSize)
			if _, err := rand.Read(seed); err != nil {
				return apperr.Wrap(apperr.SandboxInternal, err, "generate random seed")
			}
			pubkey, err := xcrypto.PublicKey(algo, seed)
			if err != nil {
				return err
			}

			if seedPath != "" {
				if err := os.WriteFile(seedPath, seed, 0o600); err != nil {
					return apperr.Wrap(apperr.UsbIo, err, "write seed fixture")
				}
			}
			if pubkeyPath != "" {
				if err := os.WriteFile(pubkeyPath, pubkey, 0o644); err != nil {
					return apperr.Wrap(apperr.UsbIo, err, "write pubkey fixture")
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed written to %s, pubkey written to %s\n", seedPath, pubkeyPath)
			return nil
		},
	}
	cmd.Flags().String("seed", "", "path to write a freshly generated seed")
	cmd.Flags().String("pubkey", "", "path to write the seed's derived public key")
	cmd.Flags().String("algorithm", "ed25519", "signing algorithm used to derive the public key")
	return cmd
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return apperr.Wrap(apperr.UsbIo, err, fmt.Sprintf("read %s", src))
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return apperr.Wrap(apperr.UsbIo, err, fmt.Sprintf("write %s", dst))
	}
	return nil
}

func parseAlgorithm(s string) (spec.SignAlg, error) {
	switch s {
	case "ed25519":
		return spec.Ed25519, nil
	case "secp256k1-ecdsa":
		return spec.Secp256k1ECDSA, nil
	case "secp256k1-schnorr":
		return spec.Secp256k1Schnorr, nil
	default:
		return "", apperr.New(apperr.UnsupportedAlgo, "unknown algorithm: "+s)
	}
}

func parseSignable(s string) (spec.Signable, error) {
	switch s {
	case "whole":
		return spec.Signable{Kind: spec.SignableWhole}, nil
	case "hash-blake2b":
		return spec.Signable{
			Kind:   spec.SignableHashThenSign,
			Hash:   spec.Blake2b256,
			Source: spec.SignableSource{Kind: spec.SourceWhole},
		}, nil
	case "hash-sha256":
		return spec.Signable{
			Kind:   spec.SignableHashThenSign,
			Hash:   spec.Sha256,
			Source: spec.SignableSource{Kind: spec.SourceWhole},
		}, nil
	default:
		return spec.Signable{}, apperr.New(apperr.DescriptorDecode, "unknown signable mode: "+s)
	}
}

func parseOutputMode(s string) (spec.OutputSpec, error) {
	switch s {
	case "signature-only":
		return spec.SignatureOnly, nil
	case "append":
		return spec.AppendToPayload, nil
	case "wasm-assemble":
		return spec.WasmAssemble, nil
	default:
		return "", apperr.New(apperr.DescriptorDecode, "unknown output mode: "+s)
	}
}
