// Package auth provides GitHub credential resolution and lifecycle.
// A Credential is resolved once by the caller and passed explicitly to every
// component that talks to GitHub; nothing in ghgantt holds it globally.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNoToken indicates that no provider could supply a token.
var ErrNoToken = errors.New("no GitHub token available")

const keyringService = "ghgantt.github"

// DefaultAccount is the keyring account used when none is configured.
const DefaultAccount = "default"

// Credential is an opaque bearer token.
type Credential string

// IsZero reports whether the credential is absent.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Token returns the raw bearer token.
func (c Credential) Token() string {
	return string(c)
}

// String redacts the token so credentials never leak into logs.
func (c Credential) String() string {
	if c.IsZero() {
		return "<none>"
	}
	return "<redacted>"
}

// TokenProvider defines the interface for obtaining a GitHub authentication token.
type TokenProvider interface {
	Name() string
	GetToken() (string, error)
}

// KeyringProvider reads a token previously saved with Login.
type KeyringProvider struct {
	Account string
}

// Name implements TokenProvider.
func (k *KeyringProvider) Name() string { return "keyring" }

// GetToken reads the token from the OS keychain.
func (k *KeyringProvider) GetToken() (string, error) {
	token, err := keyring.Get(keyringService, k.account())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", errors.New("no token stored in keyring (run 'ghgantt auth login')")
		}
		return "", fmt.Errorf("keyring lookup failed: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", errors.New("keyring token is empty")
	}
	return token, nil
}

func (k *KeyringProvider) account() string {
	if k.Account == "" {
		return DefaultAccount
	}
	return k.Account
}

// GhCliProvider obtains tokens by shelling out to the GitHub CLI (`gh auth token`).
type GhCliProvider struct{}

// Name implements TokenProvider.
func (g *GhCliProvider) Name() string { return "gh" }

// GetToken shells out to `gh auth token` to retrieve the current token.
// Returns an error if gh CLI is not installed, not authenticated, or the command fails.
func (g *GhCliProvider) GetToken() (string, error) {
	cmd := exec.Command("gh", "auth", "token", "--hostname", "github.com")
	output, err := cmd.Output()
	if err != nil {
		if execErr, ok := err.(*exec.Error); ok && execErr.Err == exec.ErrNotFound {
			return "", errors.New("gh CLI not found in PATH")
		}
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("gh auth token returned empty token")
	}

	return token, nil
}

// EnvProvider obtains tokens from the GITHUB_TOKEN environment variable.
type EnvProvider struct{}

// Name implements TokenProvider.
func (e *EnvProvider) Name() string { return "env" }

// GetToken reads the GITHUB_TOKEN environment variable.
func (e *EnvProvider) GetToken() (string, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return "", errors.New("GITHUB_TOKEN environment variable not set or empty")
	}
	return token, nil
}

// DefaultProviders returns the providers tried by Resolve, in order:
// keyring (explicit login), gh CLI, GITHUB_TOKEN.
func DefaultProviders(account string) []TokenProvider {
	return []TokenProvider{
		&KeyringProvider{Account: account},
		&GhCliProvider{},
		&EnvProvider{},
	}
}

// Resolve returns the first token any provider yields.
// When all fail the error wraps ErrNoToken and lists every provider's failure.
func Resolve(providers ...TokenProvider) (Credential, error) {
	var errs []error
	for _, p := range providers {
		token, err := p.GetToken()
		if err == nil {
			return Credential(token), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}

	return "", fmt.Errorf(
		"%w: %v\n"+
			"Please either:\n"+
			"  1. Run 'ghgantt auth login --token <token>',\n"+
			"  2. Run 'gh auth login' to authenticate with GitHub CLI, or\n"+
			"  3. Set the GITHUB_TOKEN environment variable with a personal access token",
		ErrNoToken, errors.Join(errs...),
	)
}

// Login stores token in the OS keychain for account.
func Login(account, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token must not be empty")
	}
	if account == "" {
		account = DefaultAccount
	}
	if err := keyring.Set(keyringService, account, strings.TrimSpace(token)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Verifier resolves the login a credential belongs to.
type Verifier interface {
	Viewer(ctx context.Context, cred Credential) (string, error)
}

// VerifyAndLogin checks token against GitHub and stores it only when the check
// succeeds, returning the login it belongs to. A nil verifier stores the token
// unchecked.
func VerifyAndLogin(ctx context.Context, account, token string, v Verifier) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("token must not be empty")
	}

	var login string
	if v != nil {
		var err error
		login, err = v.Viewer(ctx, Credential(token))
		if err != nil {
			return "", fmt.Errorf("failed to verify token: %w", err)
		}
	}

	if err := Login(account, token); err != nil {
		return "", err
	}
	return login, nil
}

// Logout removes the stored token for account. Removing a missing token is not an error.
func Logout(account string) error {
	if account == "" {
		account = DefaultAccount
	}
	if err := keyring.Delete(keyringService, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
