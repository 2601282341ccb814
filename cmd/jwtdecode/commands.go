package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtdecode"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [token|-]",
		Short: "Print the header, payload and signature of a token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd, args)
			if err != nil {
				return err
			}

			tok, err := jwtdecode.Decode(token)
			if err != nil {
				a.log.Debug("decode failed", "error", err)
				return err
			}

			report := newDecodeReport(tok)
			return a.render(cmd.OutOrStdout(), report, func(w io.Writer) { a.printDecode(w, report) })
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [token|-]",
		Short: "Check exp, nbf, iss and aud without verifying the signature",
		Long: "validate decodes a token and checks its time window, issuer and audience.\n" +
			"The exit status is 1 when the token is invalid or cannot be decoded.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd, args)
			if err != nil {
				return err
			}

			insp, err := a.inspector()
			if err != nil {
				return err
			}

			res, err := insp.DecodeAndValidate(token)
			if err != nil {
				return err
			}

			report := validateReport{
				ValidationResult: res.ValidationResult,
				Issuer:           res.Token.Payload.Issuer(),
				Subject:          res.Token.Payload.Subject(),
				Audience:         res.Token.Payload.Audience(),
			}
			if err := a.render(cmd.OutOrStdout(), report, func(w io.Writer) { a.printValidate(w, report) }); err != nil {
				return err
			}
			if !res.Valid {
				return errTokenInvalid
			}
			return nil
		},
	}
	addValidationFlags(cmd)
	return cmd
}

func newExpiryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expiry [token|-]",
		Short: "Report whether a token has expired and how long it has left",
		Long: "expiry reports the exp claim of a token. Tokens that cannot be decoded are\n" +
			"reported as expired. The exit status is 1 when the token is expired.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd, args)
			if err != nil {
				return err
			}

			insp, err := a.inspector()
			if err != nil {
				return err
			}

			report := expiryReport{Expired: insp.IsExpired(token)}
			left, _ := insp.TimeUntilExpiration(token)
			report.SecondsLeft = int64(left / time.Second)

			if tok, err := insp.Decode(token); err != nil {
				a.log.Warn("token could not be decoded, treating it as expired", "error", err)
			} else if exp, ok := tok.Payload.ExpiresAt(); ok {
				report.HasExp = true
				report.ExpiresAt = exp.Time().Format(time.RFC3339)
			}

			if err := a.render(cmd.OutOrStdout(), report, func(w io.Writer) { a.printExpiry(w, report) }); err != nil {
				return err
			}
			if report.Expired {
				return errTokenInvalid
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Duration("clock-skew", 30*time.Second, "Clock skew tolerance for exp")
	f.Int64("now", 0, "Evaluate at this Unix time instead of the current time")
	return cmd
}

func (a *app) inspector() (*jwtdecode.Inspector, error) {
	opts, err := a.cfg.ValidationOptions()
	if err != nil {
		return nil, err
	}
	a.log.Debug("validation options",
		"skip_exp", opts.SkipExp,
		"skip_nbf", opts.SkipNbf,
		"clock_skew", opts.EffectiveClockSkew(),
		"issuer", opts.ExpectedIssuer,
		"audience", []string(opts.ExpectedAudience),
	)
	return jwtdecode.NewInspectorWithLogger(a.log, opts)
}
