// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTLSMode(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected TLSMode
	}{
		{
			name:     "explicit off",
			cfg:      config.Config{Server: config.ServerConfig{Host: "example.com"}, TLS: config.TLSConfig{Mode: "off"}},
			expected: TLSModeOff,
		},
		{
			name:     "explicit selfsigned",
			cfg:      config.Config{Server: config.ServerConfig{Host: "localhost"}, TLS: config.TLSConfig{Mode: "SelfSigned"}},
			expected: TLSModeSelfSigned,
		},
		{
			name:     "auto on localhost",
			cfg:      config.Config{Server: config.ServerConfig{Host: "localhost"}, TLS: config.TLSConfig{Mode: "auto"}},
			expected: TLSModeOff,
		},
		{
			name: "auto with cert files",
			cfg: config.Config{
				Server: config.ServerConfig{Host: "example.com"},
				TLS:    config.TLSConfig{Mode: "auto", CertFile: "cert.pem", KeyFile: "key.pem"},
			},
			expected: TLSModeManual,
		},
		{
			name:     "auto on ip address",
			cfg:      config.Config{Server: config.ServerConfig{Host: "192.0.2.10"}, TLS: config.TLSConfig{Email: "ops@example.com"}},
			expected: TLSModeSelfSigned,
		},
		{
			name:     "unknown mode falls back to detection",
			cfg:      config.Config{Server: config.ServerConfig{Host: "localhost"}, TLS: config.TLSConfig{Mode: "sometimes"}},
			expected: TLSModeOff,
		},
		{
			name:     "auto without acme email",
			cfg:      config.Config{Server: config.ServerConfig{Host: "example.com"}},
			expected: TLSModeSelfSigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveTLSMode(&tt.cfg))
		})
	}
}

func TestTLSHosts(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "example.com"},
		I18n: config.I18nConfig{Locales: []locale.Locale{
			{Code: "en", Domain: "example.com"},
			{Code: "fr", Domain: "https://fr.example.com"},
			{Code: "de", Domain: "de.example.com:8443/shop"},
			{Code: "it"},
		}},
	}

	assert.Equal(t, []string{"example.com", "fr.example.com", "de.example.com"}, tlsHosts(cfg))
}

func TestCanUseACME_LocalhostDomain(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "example.com"},
		TLS:    config.TLSConfig{Email: "ops@example.com"},
		I18n:   config.I18nConfig{Locales: []locale.Locale{{Code: "en", Domain: "localhost"}}},
	}

	assert.False(t, canUseACME(cfg))
}

func TestSetupSelfSigned(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "example.com"},
		TLS:    config.TLSConfig{Mode: "selfsigned", CertDir: t.TempDir()},
		I18n: config.I18nConfig{Locales: []locale.Locale{
			{Code: "en", Domain: "example.com"},
			{Code: "fr", Domain: "fr.example.com"},
		}},
	}

	result, err := SetupTLS(cfg, testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, TLSModeSelfSigned, result.Mode)
	require.NotNil(t, result.TLSConfig)
	require.Len(t, result.TLSConfig.Certificates, 1)

	leaf, err := x509.ParseCertificate(result.TLSConfig.Certificates[0].Certificate[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"example.com", "fr.example.com", "localhost"}, leaf.DNSNames)
	assert.True(t, leaf.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))

	t.Run("reuses the existing certificate", func(t *testing.T) {
		again, err := SetupTLS(cfg, testutil.Logger())
		require.NoError(t, err)
		assert.Equal(t, result.TLSConfig.Certificates[0].Certificate[0], again.TLSConfig.Certificates[0].Certificate[0])
	})
}

func TestSetupManual_MissingFiles(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "example.com"},
		TLS:    config.TLSConfig{Mode: "manual", CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"},
	}

	_, err := SetupTLS(cfg, testutil.Logger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate file not found")
}

func TestParseTLSMode(t *testing.T) {
	tests := []struct {
		in    string
		want  TLSMode
		known bool
	}{
		{"ACME", TLSModeACME, true},
		{"manual", TLSModeManual, true},
		{"auto", "", true},
		{"", "", true},
		{"sometimes", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			mode, known := parseTLSMode(tt.in)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestAcmeUnavailable(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "ip host",
			cfg:  config.Config{Server: config.ServerConfig{Host: "192.0.2.10"}, TLS: config.TLSConfig{Email: "ops@example.com"}},
			want: "is an IP address",
		},
		{
			name: "local locale domain",
			cfg: config.Config{
				Server: config.ServerConfig{Host: "example.com"},
				TLS:    config.TLSConfig{Email: "ops@example.com"},
				I18n:   config.I18nConfig{Locales: []locale.Locale{{Code: "fr", Domain: "localhost"}}},
			},
			want: "is local",
		},
		{
			name: "no email",
			cfg:  config.Config{Server: config.ServerConfig{Host: "example.com"}},
			want: "no account email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := acmeUnavailable(&tt.cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFingerprint(t *testing.T) {
	assert.Empty(t, fingerprint(&tls.Certificate{}))

	fp := fingerprint(&tls.Certificate{Certificate: [][]byte{[]byte("leaf")}})

	assert.Len(t, strings.Split(fp, ":"), 32)
	assert.Equal(t, strings.ToUpper(fp), fp)
}

func TestExpiresSoon(t *testing.T) {
	assert.True(t, expiresSoon(&tls.Certificate{}))
	assert.True(t, expiresSoon(&tls.Certificate{Certificate: [][]byte{[]byte("not a certificate")}}))

	cfg := &config.Config{Server: config.ServerConfig{Host: "example.com"}}
	dir := t.TempDir()
	cert, err := issueSelfSigned(cfg, dir+"/cert.pem", dir+"/key.pem")
	require.NoError(t, err)

	assert.False(t, expiresSoon(cert))
}
