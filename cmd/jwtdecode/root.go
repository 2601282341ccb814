package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/cybergodev/jwtdecode/internal/config"
	"github.com/cybergodev/jwtdecode/internal/logger"
)

// errTokenInvalid makes the process exit non-zero after the report has been printed.
var errTokenInvalid = errors.New("token is invalid")

type app struct {
	v   *viper.Viper
	cfg *config.Config
	log *slog.Logger
	ui  *ui
}

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI(noColor bool) *ui {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return &ui{
		title: mk(color.FgHiCyan, color.Bold),
		ok:    mk(color.FgGreen, color.Bold),
		info:  mk(color.FgCyan),
		warn:  mk(color.FgYellow),
		err:   mk(color.FgRed, color.Bold),
		dim:   mk(color.FgHiBlack),
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "jwtdecode",
		Short: "Inspect JWTs without verifying signatures",
		Long: "jwtdecode decodes JSON Web Tokens and checks their time and audience claims locally.\n" +
			"Signatures are never verified: use it to inspect tokens, not to trust them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Init(cmd.ErrOrStderr(), cfg.LogLevel)
			a.ui = newUI(cfg.NoColor)
			a.log.Debug("configuration loaded", "output", cfg.Output, "options_file", cfg.OptionsFile)
			return nil
		},
	}

	root.SetHelpTemplate(helpTemplate(newUI(color.NoColor)))

	pf := root.PersistentFlags()
	pf.String("config", "", "CLI config file (default ./.jwtdecode.yaml or ~/.jwtdecode.yaml)")
	pf.String("log-level", "WARN", "Log level: DEBUG, INFO, WARN or ERROR")
	pf.StringP("output", "o", "text", "Output format: text, json or yaml")
	pf.Bool("no-color", false, "Disable coloured output")

	root.AddCommand(
		newDecodeCmd(a),
		newValidateCmd(a),
		newExpiryCmd(a),
	)
	return root
}

func helpTemplate(ui *ui) string {
	return fmt.Sprintf(`%s - inspect JWTs without verifying signatures

Usage:
  {{.UseLine}}
{{if .HasAvailableSubCommands}}
Commands:
{{range .Commands}}{{if (or .IsAvailableCommand .IsAdditionalHelpTopicCommand)}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}
{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
Environment:
  %s_<FLAG> overrides a flag default, e.g. %s_ISSUER or %s_CLOCK_SKEW

Examples:
  jwtdecode decode eyJhbGciOi...
  echo "$TOKEN" | jwtdecode validate - --issuer https://auth.example.com --audience api
  jwtdecode expiry "$TOKEN" -o json

`, ui.title("jwtdecode"), config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
}

func addValidationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("options", "", "YAML file with validation options")
	f.String("issuer", "", "Expected issuer (iss), matched exactly")
	f.StringSlice("audience", nil, "Acceptable audience (aud); repeat or comma-separate for several")
	f.Duration("clock-skew", 30*time.Second, "Clock skew tolerance for exp and nbf")
	f.Bool("skip-exp", false, "Do not check the expiration time")
	f.Bool("skip-nbf", false, "Do not check the not-before time")
	f.Int64("now", 0, "Evaluate at this Unix time instead of the current time")
}

// readToken returns the token from args, or from stdin when args is empty or "-".
// An interactive stdin gets a hidden prompt. A leading "Bearer " is stripped.
func readToken(cmd *cobra.Command, args []string) (string, error) {
	var token string
	if len(args) > 0 && args[0] != "-" {
		token = args[0]
	} else if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		token = string(b)
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		token = line
	}

	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token, nil
}
