package config

import (
	"strings"
	"testing"
)

func TestValidate_CustomRules(t *testing.T) {
	cases := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name: "UserWithoutCredential",
			content: `
[user:eier]
`,
			errPart: "neither b64_password nor password",
		},
		{
			name: "UserWithBothCredentials",
			content: `
[user:eier]
password = geheim
b64_password = Z2VoZWlt
`,
			errPart: "both b64_password and password",
		},
		{
			name: "ReservedAnonymousUser",
			content: `
[user:anonymous]
password = geheim
`,
			errPart: "reserved",
		},
		{
			name: "GroupWithoutMemberList",
			content: `
[group:all]
`,
			errPart: "missing user list",
		},
		{
			name: "HTTPSWithoutTLSMaterial",
			content: `
[global]
https_port = 8443
`,
			errPart: "certfile/keyfile",
		},
		{
			name: "InvalidLogLevel",
			content: `
[logging]
level = verbose
`,
			errPart: "validation failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Errorf("Expected error containing %q, got: %v", tc.errPart, err)
			}
		})
	}
}

func TestValidate_AcceptsMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[user:eier]
password = geheim
`))
	if err != nil {
		t.Fatalf("Expected minimal config to validate, got: %v", err)
	}
	if cfg.Global.Host != "localhost" {
		t.Errorf("Expected default host, got %q", cfg.Global.Host)
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"a", 1},
		{"a, b, c", 3},
		{"a,,b", 2},
		{" a ,b ", 2},
	}
	for _, tc := range cases {
		if got := splitList(tc.in); len(got) != tc.want {
			t.Errorf("splitList(%q) = %v, want %d entries", tc.in, got, tc.want)
		}
	}
}
