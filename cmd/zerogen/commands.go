// commands.go - zerogen subcommands
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zerochain/internal/circuit"
	"zerochain/internal/elgamal"
	"zerochain/internal/genesis"
	"zerochain/internal/jubjub"
	"zerochain/internal/keys"
)

// errNoEntry is returned by decrypt when the account has no genesis balance.
var errNoEntry = errors.New("no genesis entry for account")

func (a *app) genesisCmd() *cobra.Command {
	var (
		chain, scheme, policy, vkPath, out string
		workers                            int
	)
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Assemble encrypted genesis balances into a chain spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if f.Changed("chain") {
				a.cfg.Chain = chain
			}
			if f.Changed("scheme") {
				a.cfg.Scheme = scheme
			}
			if f.Changed("randomness") {
				a.cfg.RandomnessPolicy = policy
			}
			if f.Changed("vk") {
				a.cfg.VerifyingKeyPath = vkPath
			}
			if f.Changed("out") {
				a.cfg.OutputPath = out
			}
			if f.Changed("workers") {
				a.cfg.Workers = workers
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.buildGenesis(cmd)
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "chain preset: dev or local")
	cmd.Flags().StringVar(&scheme, "scheme", "", "key derivation scheme: expanded or direct")
	cmd.Flags().StringVar(&policy, "randomness", "", "encryption randomness: secure or fixed-for-testing")
	cmd.Flags().StringVar(&vkPath, "vk", "", "verifying key file; empty uses the embedded development key")
	cmd.Flags().StringVar(&out, "out", "", "chain spec output path")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel account workers")
	return cmd
}

func (a *app) buildGenesis(cmd *cobra.Command) error {
	preset, err := a.cfg.Preset()
	if err != nil {
		return err
	}
	opts, err := a.cfg.AssemblerOptions()
	if err != nil {
		return err
	}
	opts = append(opts, genesis.WithLogger(a.log.Logger), genesis.WithRecorder(a.metrics))

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout())
	defer cancel()

	spec := genesis.NewChainSpec(preset)
	spec.Scheme = a.cfg.Scheme
	spec.RandomnessPolicy = a.cfg.RandomnessPolicy
	gen, err := genesis.NewAssembler(opts...).Build(ctx, preset.Accounts, spec)
	if err != nil {
		return err
	}
	if err := spec.SaveToFile(a.cfg.OutputPath); err != nil {
		return fmt.Errorf("failed to write chain spec: %w", err)
	}

	a.log.Info().
		Str("chain", spec.Name).
		Str("path", a.cfg.OutputPath).
		Msg("chain spec written")
	a.log.Audit("genesis_built", map[string]interface{}{
		"chain":      spec.ID,
		"accounts":   len(gen.Entries),
		"scheme":     spec.Scheme,
		"randomness": spec.RandomnessPolicy,
		"state_root": gen.StateRoot.String(),
	})
	fmt.Fprintln(cmd.OutOrStdout(), gen.StateRoot)
	return nil
}

func (a *app) addressCmd() *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "address NAME...",
		Short: "Print the payment address derived from each account name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("scheme") {
				a.cfg.Scheme = scheme
			}
			s, err := a.cfg.KeyScheme()
			if err != nil {
				return err
			}
			params := jubjub.MustParams()
			for _, name := range args {
				addr, err := s.DeriveAddress(params, keys.SeedFromName(name))
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, addr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "", "key derivation scheme: expanded or direct")
	return cmd
}

func (a *app) decryptCmd() *cobra.Command {
	var scheme, specPath string
	cmd := &cobra.Command{
		Use:   "decrypt NAME",
		Short: "Decrypt an account's genesis balance from a chain spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if specPath == "" {
				specPath = a.cfg.OutputPath
			}
			spec, err := genesis.LoadChainSpecFromFile(specPath)
			if err != nil {
				return err
			}
			if err := spec.Verify(); err != nil {
				return err
			}
			switch {
			case cmd.Flags().Changed("scheme"):
				a.cfg.Scheme = scheme
			case spec.Scheme != "":
				a.cfg.Scheme = spec.Scheme
			}
			s, err := a.cfg.KeyScheme()
			if err != nil {
				return err
			}

			params := jubjub.MustParams()
			k, err := s.Derive(params, keys.SeedFromName(args[0]))
			if err != nil {
				return err
			}
			addr := k.Address.Pkd()
			for _, e := range spec.EncryptedBalances {
				if e.Address != addr {
					continue
				}
				balance, err := elgamal.Decrypt(e.Ciphertext, k.ProofGeneration.Bdk, params.ElGamal())
				if err != nil {
					return err
				}
				a.log.Debug().Str("account", args[0]).Stringer("address", addr).Msg("balance decrypted")
				fmt.Fprintln(cmd.OutOrStdout(), balance)
				return nil
			}
			return fmt.Errorf("%w %q (%s)", errNoEntry, args[0], addr)
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "", "key derivation scheme; defaults to the one recorded in the chain spec")
	cmd.Flags().StringVar(&specPath, "spec", "", "chain spec path; defaults to output_path")
	return cmd
}

func (a *app) setupCmd() *cobra.Command {
	var pkPath, vkPath string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Generate or load the balance circuit's Groth16 keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pkPath == "" {
				pkPath = a.cfg.ProvingKeyPath
			}
			if vkPath == "" {
				vkPath = a.cfg.VerifyingKeyPath
			}
			if pkPath == "" || vkPath == "" {
				return fmt.Errorf("setup needs both --pk and --vk (or proving_key_path and verifying_key_path)")
			}

			start := time.Now()
			ccs, err := circuit.Compile(jubjub.MustParams())
			if err != nil {
				return fmt.Errorf("circuit compilation failed: %w", err)
			}
			a.metrics.RecordCircuitCompile(time.Since(start))
			a.log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("balance circuit compiled")

			start = time.Now()
			_, key, err := circuit.SetupOrLoadKeys(ccs, pkPath, vkPath)
			if err != nil {
				return fmt.Errorf("SetupOrLoadKeys failed: %w", err)
			}
			a.metrics.RecordSetup(time.Since(start))

			blob, err := circuit.MarshalVerifyingKey(key)
			if err != nil {
				return err
			}
			a.log.Info().Str("pk", pkPath).Str("vk", vkPath).Stringer("verifying_key", blob).Msg("groth16 keys ready")
			fmt.Fprintln(cmd.OutOrStdout(), vkPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&pkPath, "pk", "", "proving key path")
	cmd.Flags().StringVar(&vkPath, "vk", "", "verifying key path")
	return cmd
}
