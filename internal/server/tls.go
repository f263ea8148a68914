// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"github.com/samber/lo"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode is how the server terminates TLS.
type TLSMode string

const (
	TLSModeOff        TLSMode = "off"
	TLSModeACME       TLSMode = "acme"
	TLSModeSelfSigned TLSMode = "selfsigned"
	TLSModeManual     TLSMode = "manual"
)

const (
	selfSignedValidity = 365 * 24 * time.Hour
	renewBefore        = 30 * 24 * time.Hour
)

// TLSResult is the resolved TLS setup.
type TLSResult struct {
	TLSConfig   *tls.Config
	CertManager *autocert.Manager // ACME only
	HTTPHandler http.Handler      // ACME challenge and HTTPS redirect
	Mode        TLSMode
}

// SetupTLS resolves the TLS mode for cfg and prepares its certificates. Every
// locale domain is covered next to the server host.
func SetupTLS(cfg *config.Config, logger *slog.Logger) (*TLSResult, error) {
	if _, known := parseTLSMode(cfg.TLS.Mode); !known {
		logger.Warn("unknown TLS mode, detecting one", "mode", cfg.TLS.Mode)
	}
	mode := resolveTLSMode(cfg)
	logger.Info("TLS mode resolved", "mode", mode, "hosts", tlsHosts(cfg))

	switch mode {
	case TLSModeOff:
		return &TLSResult{Mode: TLSModeOff}, nil
	case TLSModeACME:
		if cfg.Server.Port != 443 {
			logger.Warn("ACME serves on port 443, ignoring the configured port", "port", cfg.Server.Port)
		}
		if err := acmeUnavailable(cfg); err != nil {
			return nil, fmt.Errorf("acme: %w", err)
		}
		return setupACME(cfg)
	case TLSModeSelfSigned:
		return setupSelfSigned(cfg, logger)
	case TLSModeManual:
		return setupManual(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", mode)
	}
}

// parseTLSMode maps a configured mode to a TLSMode. Auto and "" map to "".
func parseTLSMode(s string) (TLSMode, bool) {
	switch m := TLSMode(strings.ToLower(s)); m {
	case TLSModeOff, TLSModeACME, TLSModeSelfSigned, TLSModeManual:
		return m, true
	case "auto", "":
		return "", true
	default:
		return "", false
	}
}

// resolveTLSMode returns the configured mode, or detects one: no TLS on
// localhost, manual with certificate files, ACME when every host can get a
// public certificate, self-signed otherwise.
func resolveTLSMode(cfg *config.Config) TLSMode {
	if mode, _ := parseTLSMode(cfg.TLS.Mode); mode != "" {
		return mode
	}
	switch {
	case config.IsLocalhost(cfg.Server.Host):
		return TLSModeOff
	case cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "":
		return TLSModeManual
	case canUseACME(cfg):
		return TLSModeACME
	default:
		return TLSModeSelfSigned
	}
}

// tlsHosts returns the server host followed by every locale domain.
func tlsHosts(cfg *config.Config) []string {
	hosts := []string{cfg.Server.Host}
	for _, l := range cfg.I18n.Locales {
		if l.Domain == "" {
			continue
		}
		domain := l.Domain
		if _, rest, ok := strings.Cut(domain, "://"); ok {
			domain = rest
		}
		domain, _, _ = strings.Cut(domain, "/")
		if h, _, err := net.SplitHostPort(domain); err == nil {
			domain = h
		}
		hosts = append(hosts, domain)
	}
	return lo.Uniq(hosts)
}

func canUseACME(cfg *config.Config) bool {
	return acmeUnavailable(cfg) == nil
}

// acmeUnavailable reports why Let's Encrypt cannot issue certificates for
// cfg, or nil when it can.
func acmeUnavailable(cfg *config.Config) error {
	for _, host := range tlsHosts(cfg) {
		if config.IsLocalhost(host) {
			return fmt.Errorf("host %q is local", host)
		}
		if net.ParseIP(host) != nil {
			return fmt.Errorf("host %q is an IP address", host)
		}
	}
	if cfg.TLS.Email == "" {
		return errors.New("no account email configured")
	}
	for _, port := range []int{80, 443} {
		if !portFree(port) {
			return fmt.Errorf("port %d is in use", port)
		}
	}
	return nil
}

func portFree(port int) bool {
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func setupACME(cfg *config.Config) (*TLSResult, error) {
	dir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create ACME cert directory: %w", err)
	}
	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(dir),
		HostPolicy: autocert.HostWhitelist(tlsHosts(cfg)...),
	}
	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12
	return &TLSResult{
		Mode:        TLSModeACME,
		TLSConfig:   tlsConfig,
		CertManager: manager,
		HTTPHandler: manager.HTTPHandler(nil),
	}, nil
}

// setupSelfSigned reuses the certificate under the cert dir until it is
// about to expire, then issues a new one.
func setupSelfSigned(cfg *config.Config, logger *slog.Logger) (*TLSResult, error) {
	dir := filepath.Join(cfg.TLS.CertDir, "selfsigned")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create self-signed cert directory: %w", err)
	}
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	switch {
	case err == nil && !expiresSoon(&cert):
		logger.Info("reusing self-signed certificate", "dir", dir)
	default:
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("discarding unreadable self-signed certificate", "error", err)
		}
		fresh, genErr := issueSelfSigned(cfg, certFile, keyFile)
		if genErr != nil {
			return nil, genErr
		}
		cert = *fresh
		logger.Info("issued self-signed certificate", "dir", dir)
	}

	logger.Warn("self-signed certificate in use, browsers ask to accept it on first visit",
		"sha256", fingerprint(&cert))
	return &TLSResult{Mode: TLSModeSelfSigned, TLSConfig: serverTLSConfig(&cert)}, nil
}

func setupManual(cfg *config.Config, logger *slog.Logger) (*TLSResult, error) {
	certFile, keyFile := cfg.TLS.CertFile, cfg.TLS.KeyFile
	if certFile == "" || keyFile == "" {
		return nil, errors.New("manual TLS mode requires both cert-file and key-file")
	}
	for _, f := range []string{certFile, keyFile} {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("certificate file not found: %w", err)
		}
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	logger.Info("using configured certificate", "cert", certFile, "sha256", fingerprint(&cert))
	return &TLSResult{Mode: TLSModeManual, TLSConfig: serverTLSConfig(&cert)}, nil
}

// issueSelfSigned writes an ECDSA P-256 certificate for every TLS host plus
// the loopback names and loads it back.
func issueSelfSigned(cfg *config.Config, certFile, keyFile string) (*tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"i18n routing"}, CommonName: cfg.Server.Host},
		NotBefore:             now,
		NotAfter:              now.Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, host := range append(tlsHosts(cfg), "localhost", "127.0.0.1", "::1") {
		if ip := net.ParseIP(host); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, host)
		}
	}
	tmpl.DNSNames = lo.Uniq(tmpl.DNSNames)

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	if err := writePEM(certFile, "CERTIFICATE", der); err != nil {
		return nil, err
	}
	if err := writePEM(keyFile, "EC PRIVATE KEY", keyDER); err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated cert: %w", err)
	}
	return &cert, nil
}

func writePEM(path, blockType string, der []byte) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func expiresSoon(cert *tls.Certificate) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return true
	}
	return time.Until(leaf.NotAfter) < renewBefore
}

// fingerprint is the colon separated SHA-256 of the leaf certificate.
func fingerprint(cert *tls.Certificate) string {
	if len(cert.Certificate) == 0 {
		return ""
	}
	sum := sha256.Sum256(cert.Certificate[0])
	return strings.ReplaceAll(fmt.Sprintf("% X", sum[:]), " ", ":")
}

func serverTLSConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}
