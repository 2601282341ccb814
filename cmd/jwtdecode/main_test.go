package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow = "1700000000"

func makeToken(t *testing.T, header, payload map[string]any) string {
	t.Helper()
	enc := func(v map[string]any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(data)
	}
	return enc(header) + "." + enc(payload) + ".c2lnbmF0dXJl"
}

func sampleToken(t *testing.T) string {
	return makeToken(t,
		map[string]any{"alg": "HS256", "typ": "JWT"},
		map[string]any{
			"sub": "user-42",
			"iss": "https://auth.example.com",
			"aud": []string{"api", "web"},
			"iat": 1699996400,
			"exp": 1700003600,
		},
	)
}

// run executes the CLI in an isolated directory with no config file or environment overrides.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// ============================================================================
// decode
// ============================================================================

func TestDecodeCommand(t *testing.T) {
	token := sampleToken(t)

	t.Run("Text", func(t *testing.T) {
		out, _, err := run(t, "", "decode", token)
		require.NoError(t, err)
		assert.Contains(t, out, "Header")
		assert.Contains(t, out, "HS256")
		assert.Contains(t, out, "user-42")
		assert.Contains(t, out, "2023-11-14T23:13:20Z")
		assert.Contains(t, out, "(not verified)")
	})

	t.Run("JSON", func(t *testing.T) {
		out, _, err := run(t, "", "decode", token, "--output", "json")
		require.NoError(t, err)

		var report struct {
			Header  map[string]any `json:"header"`
			Payload map[string]any `json:"payload"`
			Signed  bool           `json:"signed"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "HS256", report.Header["alg"])
		assert.Equal(t, "user-42", report.Payload["sub"])
		assert.True(t, report.Signed)
	})

	t.Run("YAMLKeepsTimestampsWhole", func(t *testing.T) {
		out, _, err := run(t, "", "decode", token, "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "exp: 1700003600")
		assert.NotContains(t, out, "e+09")
	})

	t.Run("StdinWithBearerPrefix", func(t *testing.T) {
		out, _, err := run(t, "Bearer "+token+"\n", "decode", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "user-42")
	})

	t.Run("UnsecuredToken", func(t *testing.T) {
		parts := strings.Split(token, ".")
		out, _, err := run(t, "", "decode", parts[0]+"."+parts[1])
		require.NoError(t, err)
		assert.Contains(t, out, "none (unsecured token)")
	})

	t.Run("Malformed", func(t *testing.T) {
		_, _, err := run(t, "", "decode", "not-a-jwt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode JWT")
	})

	t.Run("UnknownOutputFormat", func(t *testing.T) {
		_, _, err := run(t, "", "decode", token, "--output", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

// ============================================================================
// validate
// ============================================================================

func TestValidateCommand(t *testing.T) {
	token := sampleToken(t)

	tests := []struct {
		name    string
		args    []string
		valid   bool
		message string
	}{
		{"Valid", []string{"--now", testNow}, true, "token is valid"},
		{"Expired", []string{"--now", "1700003700"}, false, "JWT has expired"},
		{"WithinSkew", []string{"--now", "1700003620"}, true, "token is valid"},
		{"SkipExp", []string{"--now", "1700003700", "--skip-exp"}, true, "token is valid"},
		{"IssuerMismatch", []string{"--now", testNow, "--issuer", "https://other"}, false, "JWT issuer mismatch"},
		{"AudienceMatch", []string{"--now", testNow, "--audience", "mobile", "--audience", "web"}, true, "token is valid"},
		{"AudienceMismatch", []string{"--now", testNow, "--audience", "mobile,admin"}, false, "JWT audience mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"validate", token}, tt.args...)
			out, _, err := run(t, "", args...)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errTokenInvalid)
			}
			assert.Contains(t, out, tt.message)
		})
	}

	t.Run("JSONReport", func(t *testing.T) {
		out, _, err := run(t, "", "validate", token, "--now", "1700003700", "-o", "json")
		require.ErrorIs(t, err, errTokenInvalid)

		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, false, report["isValid"])
		assert.Equal(t, true, report["isExpired"])
		assert.Equal(t, "user-42", report["subject"])
	})

	t.Run("EnvironmentIssuer", func(t *testing.T) {
		t.Setenv("JWTDECODE_ISSUER", "https://other")
		out, _, err := run(t, "", "validate", token, "--now", testNow)
		require.ErrorIs(t, err, errTokenInvalid)
		assert.Contains(t, out, "Expected: https://other")
	})

	t.Run("DecodeFailure", func(t *testing.T) {
		_, _, err := run(t, "", "validate", "a.b.c.d")
		require.Error(t, err)
		assert.NotErrorIs(t, err, errTokenInvalid)
	})
}

// ============================================================================
// expiry
// ============================================================================

func TestExpiryCommand(t *testing.T) {
	token := sampleToken(t)

	t.Run("TimeLeft", func(t *testing.T) {
		out, _, err := run(t, "", "expiry", token, "--now", testNow)
		require.NoError(t, err)
		assert.Contains(t, out, "1h0m0s left")
	})

	t.Run("JSON", func(t *testing.T) {
		out, _, err := run(t, "", "expiry", token, "--now", testNow, "-o", "json")
		require.NoError(t, err)

		var report expiryReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.False(t, report.Expired)
		assert.True(t, report.HasExp)
		assert.EqualValues(t, 3600, report.SecondsLeft)
		assert.Equal(t, "2023-11-14T23:13:20Z", report.ExpiresAt)
	})

	t.Run("Expired", func(t *testing.T) {
		out, _, err := run(t, "", "expiry", token, "--now", "1700003700")
		require.ErrorIs(t, err, errTokenInvalid)
		assert.Contains(t, out, "expired")
	})

	t.Run("NoExp", func(t *testing.T) {
		noExp := makeToken(t, map[string]any{"alg": "none"}, map[string]any{"sub": "x"})
		out, _, err := run(t, "", "expiry", noExp)
		require.NoError(t, err)
		assert.Contains(t, out, "no expiration")
	})

	t.Run("Undecodable", func(t *testing.T) {
		out, stderr, err := run(t, "", "expiry", "garbage")
		require.ErrorIs(t, err, errTokenInvalid)
		assert.Contains(t, out, "exp could not be read")
		assert.Contains(t, stderr, "treating it as expired")
	})
}

func TestHelp(t *testing.T) {
	out, _, err := run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
	for _, name := range []string{"decode", "validate", "expiry"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "JWTDECODE_ISSUER")
}
