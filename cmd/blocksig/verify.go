package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bamsammich/blocksig/internal/engine"
)

func newVerifyCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "verify -i INPUT -o SIGNATURE [flags]",
		Short: "Check a file against a signature built with the same block size and hash",
		Long: "verify rehashes every block of INPUT and compares it to the matching record\n" +
			"in SIGNATURE. It exits 0 when every block matches and 1 when any differ.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, &opts)
		},
	}
	opts.register(cmd.Flags(), "signature file to compare against")
	return cmd
}

func runVerify(cmd *cobra.Command, opts *options) error {
	s, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer s.closeLog()

	cfg, workers, err := s.resolve(opts)
	if err != nil {
		return err
	}

	var vr engine.VerifyResult
	s.drive(func(ctx context.Context) engine.Result {
		vr = engine.Verify(ctx, cfg, workers)
		return vr.Result
	})

	switch {
	case vr.Err != nil:
		s.logger.Error("verify failed", "error", vr.Err)
		return &exitError{code: 2, err: vr.Err}
	case len(vr.Mismatched) > 0:
		s.logger.Warn("signature mismatch",
			"blocks", len(vr.Mismatched),
			"first", vr.Mismatched[0],
		)
		return &exitError{code: 1}
	default:
		return nil
	}
}
