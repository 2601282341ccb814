package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/cybergodev/jwtdecode"
)

// dateClaims are annotated with a readable time in text output.
var dateClaims = map[string]bool{"exp": true, "nbf": true, "iat": true}

type decodeReport struct {
	Header    map[string]any `json:"header" yaml:"header"`
	Payload   map[string]any `json:"payload" yaml:"payload"`
	Signed    bool           `json:"signed" yaml:"signed"`
	Signature string         `json:"signature,omitempty" yaml:"signature,omitempty"`
}

type validateReport struct {
	jwtdecode.ValidationResult `yaml:",inline"`
	Issuer                     string   `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Subject                    string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Audience                   []string `json:"audience,omitempty" yaml:"audience,omitempty"`
}

type expiryReport struct {
	Expired     bool   `json:"expired" yaml:"expired"`
	HasExp      bool   `json:"hasExp" yaml:"has_exp"`
	ExpiresAt   string `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	SecondsLeft int64  `json:"secondsLeft" yaml:"seconds_left"`
}

func newDecodeReport(tok *jwtdecode.Token) decodeReport {
	sig, signed := tok.Signature()
	return decodeReport{
		Header:    tok.Header,
		Payload:   tok.Payload,
		Signed:    signed,
		Signature: sig,
	}
}

// render writes v as JSON or YAML, or calls text for the default format.
func (a *app) render(w io.Writer, v any, text func(io.Writer)) error {
	switch a.cfg.Output {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlFriendly(v)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

// yamlFriendly rewrites whole float64 values inside claim maps as int64 so
// yaml.v3 does not print timestamps in exponent form.
func yamlFriendly(v any) any {
	switch v := v.(type) {
	case decodeReport:
		v.Header = yamlMap(v.Header)
		v.Payload = yamlMap(v.Payload)
		return v
	case map[string]any:
		return yamlMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = yamlFriendly(item)
		}
		return out
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	default:
		return v
	}
}

func yamlMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = yamlFriendly(v)
	}
	return out
}

func (a *app) printClaims(w io.Writer, title string, claims map[string]any) {
	fmt.Fprintln(w, a.ui.title(title))
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		line := fmt.Sprintf("  %s  %s", a.ui.info(fmt.Sprintf("%-*s", width, k)), claimString(claims[k]))
		if dateClaims[k] {
			if d, ok := jwtdecode.Payload(claims).Date(k); ok {
				line += "  " + a.ui.dim("("+d.Time().Format(time.RFC3339)+")")
			}
		}
		fmt.Fprintln(w, line)
	}
}

func claimString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func (a *app) printDecode(w io.Writer, r decodeReport) {
	a.printClaims(w, "Header", r.Header)
	fmt.Fprintln(w)
	a.printClaims(w, "Payload", r.Payload)
	fmt.Fprintln(w)
	fmt.Fprintln(w, a.ui.title("Signature"))
	switch {
	case !r.Signed:
		fmt.Fprintln(w, "  "+a.ui.warn("none (unsecured token)"))
	case r.Signature == "":
		fmt.Fprintln(w, "  "+a.ui.warn("empty"))
	default:
		fmt.Fprintln(w, "  "+r.Signature+"  "+a.ui.dim("(not verified)"))
	}
}

func (a *app) printValidate(w io.Writer, r validateReport) {
	if r.Valid {
		fmt.Fprintln(w, a.ui.ok("✔ token is valid"))
	} else {
		fmt.Fprintln(w, a.ui.err("✖ token is invalid"))
		for _, e := range r.Errors {
			fmt.Fprintln(w, "  - "+e)
		}
	}
	if r.Issuer != "" {
		fmt.Fprintf(w, "  %s %s\n", a.ui.info("issuer:  "), r.Issuer)
	}
	if r.Subject != "" {
		fmt.Fprintf(w, "  %s %s\n", a.ui.info("subject: "), r.Subject)
	}
	if len(r.Audience) > 0 {
		fmt.Fprintf(w, "  %s %s\n", a.ui.info("audience:"), strings.Join(r.Audience, ", "))
	}
}

func (a *app) printExpiry(w io.Writer, r expiryReport) {
	switch {
	case !r.HasExp && r.Expired:
		fmt.Fprintln(w, a.ui.err("expired")+"  "+a.ui.dim("(exp could not be read)"))
	case !r.HasExp:
		fmt.Fprintln(w, a.ui.ok("no expiration")+"  "+a.ui.dim("(exp claim absent)"))
	case r.Expired:
		fmt.Fprintf(w, "%s  %s\n", a.ui.err("expired"), a.ui.dim("at "+r.ExpiresAt))
	default:
		left := time.Duration(r.SecondsLeft) * time.Second
		fmt.Fprintf(w, "%s  %s left %s\n", a.ui.ok("valid"), left, a.ui.dim("(until "+r.ExpiresAt+")"))
	}
}
