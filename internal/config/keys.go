package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Service names for API key lookup. These are the stable identifiers the
// enrichment wiring uses; the env variable is derived from them.
const (
	// ServiceHunterIO keys the email verification API.
	ServiceHunterIO = "hunterio"

	// ServiceHIBP keys the breached-account API.
	ServiceHIBP = "hibp"

	// ServiceShodan keys the host intelligence API.
	ServiceShodan = "shodan"
)

// KeyProvider resolves API keys for enrichment services. An empty string
// means the service has no key; the adapter is then reported as disabled
// rather than failing.
type KeyProvider interface {
	// Key returns the API key for a service, or "".
	Key(service string) string
}

// EnvKeyProvider reads keys from the process environment, optionally
// preloaded from a dotenv file. The variable name for service "hunterio"
// is BROWSINT_HUNTERIO_API_KEY.
type EnvKeyProvider struct{}

// NewEnvKeyProvider creates the provider. When envFile is non-empty, it is
// loaded into the environment first; a missing file is not an error, since
// keys may come from the environment directly.
func NewEnvKeyProvider(envFile string) *EnvKeyProvider {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}
	return &EnvKeyProvider{}
}

// Key implements KeyProvider.
func (p *EnvKeyProvider) Key(service string) string {
	return os.Getenv("BROWSINT_" + strings.ToUpper(service) + "_API_KEY")
}
