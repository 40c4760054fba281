package client

import (
	"errors"
	"os"
	"strings"
)

// ErrNoCredential reports that no configured store holds a token.
var ErrNoCredential = errors.New("no credential found in any store")

// CredentialProvider supplies the bearer token for API requests. The
// transport depends only on the resulting token, not on storage mechanics.
type CredentialProvider interface {
	// Token returns the bearer token, or ErrNoCredential when the store
	// is empty. Name identifies the store in diagnostics output.
	Token() (string, error)
	Name() string
}

// StaticProvider holds a fixed token. Used by tests and by callers that
// obtained the token elsewhere.
type StaticProvider struct {
	Value string
}

func (p *StaticProvider) Token() (string, error) {
	if p.Value == "" {
		return "", ErrNoCredential
	}
	return p.Value, nil
}

func (p *StaticProvider) Name() string { return "static" }

// EnvProvider reads the token from an environment variable.
type EnvProvider struct {
	Key string
}

func (p *EnvProvider) Token() (string, error) {
	v := strings.TrimSpace(os.Getenv(p.Key))
	if v == "" {
		return "", ErrNoCredential
	}
	return v, nil
}

func (p *EnvProvider) Name() string { return "env:" + p.Key }

// FileProvider reads the token from the first line of a file.
type FileProvider struct {
	Path string
}

func (p *FileProvider) Token() (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", ErrNoCredential
	}
	token := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

func (p *FileProvider) Name() string { return "file:" + p.Path }

// ChainProvider probes a fixed priority list of stores and returns the
// first token found.
type ChainProvider struct {
	Providers []CredentialProvider
}

func (p *ChainProvider) Token() (string, error) {
	for _, provider := range p.Providers {
		if token, err := provider.Token(); err == nil {
			return token, nil
		}
	}
	return "", ErrNoCredential
}

func (p *ChainProvider) Name() string { return "chain" }

// resolve reports which store in the chain answered, for diagnostics.
func (p *ChainProvider) resolve() (token, source string, err error) {
	for _, provider := range p.Providers {
		if t, err := provider.Token(); err == nil {
			return t, provider.Name(), nil
		}
	}
	return "", "", ErrNoCredential
}

// DefaultCredentialChain probes the primary env key, the legacy env keys,
// and finally the token file, in that order.
func DefaultCredentialChain(tokenFile string) *ChainProvider {
	providers := []CredentialProvider{
		&EnvProvider{Key: "DEBT_SERVICE_TOKEN"},
		// legacy key names, still honored
		&EnvProvider{Key: "DEBT_TOKEN"},
		&EnvProvider{Key: "LEDGER_API_TOKEN"},
	}
	if tokenFile != "" {
		providers = append(providers, &FileProvider{Path: tokenFile})
	}
	return &ChainProvider{Providers: providers}
}
