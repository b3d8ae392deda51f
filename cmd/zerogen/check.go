// check.go - Preflight checks run by `zerogen check`
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"zerochain/internal/elgamal"
	"zerochain/internal/genesis"
	"zerochain/internal/jubjub"
	"zerochain/internal/keys"
	"zerochain/internal/vk"
)

// CheckStatus represents the outcome of a check
type CheckStatus string

const (
	Healthy   CheckStatus = "healthy"
	Degraded  CheckStatus = "degraded"
	Unhealthy CheckStatus = "unhealthy"
)

// errDegraded marks a check that passed with a warning.
var errDegraded = errors.New("degraded")

// errUnhealthy is returned by the check command when any check fails.
var errUnhealthy = errors.New("preflight checks failed")

// CheckResult is the outcome of one named check
type CheckResult struct {
	Name    string        `json:"name"`
	Status  CheckStatus   `json:"status"`
	Message string        `json:"message"`
	Latency time.Duration `json:"latency"`
}

// CheckReport is the outcome of every check
type CheckReport struct {
	OverallStatus CheckStatus   `json:"overall_status"`
	Timestamp     time.Time     `json:"timestamp"`
	Checks        []CheckResult `json:"checks"`
}

type namedCheck struct {
	name string
	fn   func() error
}

// Checker runs registered checks in registration order
type Checker struct {
	checks []namedCheck
}

// Register adds a check. A check returning an error wrapping errDegraded
// marks the component degraded instead of unhealthy.
func (c *Checker) Register(name string, fn func() error) {
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Run performs every check
func (c *Checker) Run() *CheckReport {
	report := &CheckReport{OverallStatus: Healthy, Timestamp: time.Now()}
	for _, chk := range c.checks {
		start := time.Now()
		err := chk.fn()
		res := CheckResult{Name: chk.name, Status: Healthy, Message: "OK", Latency: time.Since(start)}
		switch {
		case errors.Is(err, errDegraded):
			res.Status = Degraded
			res.Message = err.Error()
			if report.OverallStatus == Healthy {
				report.OverallStatus = Degraded
			}
		case err != nil:
			res.Status = Unhealthy
			res.Message = err.Error()
			report.OverallStatus = Unhealthy
		}
		report.Checks = append(report.Checks, res)
	}
	return report
}

// preflight registers the checks for the current configuration
func (a *app) preflight(specPath string) *Checker {
	c := &Checker{}
	c.Register("config", a.cfg.Validate)
	c.Register("generators", func() error {
		p, err := jubjub.NewParams()
		if err != nil {
			return err
		}
		for _, g := range []jubjub.Point{p.SpendAuth().Point(), p.Nullifier().Point(), p.ElGamal().Point(), p.Diversifier().Point()} {
			if err := g.Validate(); err != nil {
				return err
			}
		}
		return nil
	})
	c.Register("randomness", func() error {
		policy, err := elgamal.ParseRandomnessPolicy(a.cfg.RandomnessPolicy)
		if err != nil {
			return err
		}
		if _, err := policy.Sample(nil); err != nil {
			return err
		}
		if policy == elgamal.RandomnessFixedForTesting {
			return fmt.Errorf("%w: fixed randomness makes equal balances linkable", errDegraded)
		}
		return nil
	})
	c.Register("cipher", func() error {
		params := jubjub.MustParams()
		k, err := keys.SchemeExpanded.Derive(params, keys.SeedFromName("Alice"))
		if err != nil {
			return err
		}
		ct := elgamal.Encrypt(genesis.DefaultEndowment, jubjub.ScalarOne(), k.Encryption.Point(), params.ElGamal())
		got, err := elgamal.Decrypt(ct, k.ProofGeneration.Bdk, params.ElGamal())
		if err != nil {
			return err
		}
		if got != genesis.DefaultEndowment {
			return fmt.Errorf("decrypted %d, want %d", got, genesis.DefaultEndowment)
		}
		return nil
	})
	c.Register("verifying_key", func() error {
		key, err := vk.SourceFor(a.cfg.VerifyingKeyPath)()
		if err != nil {
			return err
		}
		if a.cfg.VerifyingKeyPath == "" {
			return fmt.Errorf("%w: embedded development key %s", errDegraded, key)
		}
		return nil
	})
	if specPath != "" {
		c.Register("chain_spec", func() error {
			spec, err := genesis.LoadChainSpecFromFile(specPath)
			if err != nil {
				return err
			}
			return spec.Verify()
		})
	}
	return c
}

func (a *app) checkCmd() *cobra.Command {
	var specPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run preflight checks and print a JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if specPath == "" {
				if _, err := os.Stat(a.cfg.OutputPath); err == nil {
					specPath = a.cfg.OutputPath
				}
			}
			report := a.preflight(specPath).Run()
			for _, r := range report.Checks {
				ev := a.log.Debug()
				switch r.Status {
				case Degraded:
					ev = a.log.Warn()
				case Unhealthy:
					ev = a.log.Error()
				}
				ev.Str("check", r.Name).Dur("latency", r.Latency).Msg(r.Message)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if report.OverallStatus == Unhealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "chain spec to verify; defaults to output_path when it exists")
	return cmd
}
