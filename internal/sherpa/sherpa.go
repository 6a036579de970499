// Package sherpa re-exports the platform-specific sherpa-onnx Go bindings so
// the rest of the module can import a single path.
package sherpa

import (
	"fmt"
	"slices"
	"strings"
)

// ResolveProvider maps "auto" (or empty) to the best provider for this
// machine and rejects providers the platform cannot use.
func ResolveProvider(requested string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(requested))
	if p == "" || p == "auto" {
		return defaultProvider(), nil
	}
	if !slices.Contains(availableProviders, p) {
		return "", fmt.Errorf("provider %q not available on this platform (choose from %s)",
			requested, strings.Join(availableProviders, ", "))
	}
	return p, nil
}

// AvailableProviders lists the providers valid on this platform.
func AvailableProviders() []string {
	return slices.Clone(availableProviders)
}
