// Package confusion implements the dependency-confusion comparison engine:
// a pure classification of local package identities against public-registry
// state, and a batch runner that drives registry lookups with bounded
// concurrency, retries, and deadlines.
package confusion

import (
	"fmt"
	"strings"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
)

// Source describes where a locally resolved package is declared to come from.
type Source string

const (
	// SourceInternal marks packages expected to resolve from a private
	// index, never from the public registry.
	SourceInternal Source = "internal"

	// SourcePublic marks packages intentionally installed from the public
	// registry.
	SourcePublic Source = "public"

	// SourceUnknown marks packages whose provenance could not be
	// determined from the inventory.
	SourceUnknown Source = "unknown"
)

// ParseSource parses a source string case-insensitively.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "internal", "private":
		return SourceInternal, nil
	case "public":
		return SourcePublic, nil
	case "unknown", "":
		return SourceUnknown, nil
	default:
		return SourceUnknown, fmt.Errorf("invalid source: %s", s)
	}
}

// PackageRef identifies one locally resolved dependency. Names must already
// be in the target registry's canonical form; the engine never normalizes.
// A PackageRef is immutable once read from the inventory.
type PackageRef struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Source    Source `json:"source"`
	Ecosystem string `json:"ecosystem,omitempty"`
}

// Classification is the per-package outcome of the confusion check.
type Classification string

const (
	// ClassExposed means an attacker could plausibly hijack the package
	// name on the public registry.
	ClassExposed Classification = "exposed"

	// ClassVersionMismatch means the public package is confirmed to be the
	// internal owner's, but the installed version disagrees with the
	// registry's latest.
	ClassVersionMismatch Classification = "version-mismatch"

	// ClassSafe means no confusion vector was found.
	ClassSafe Classification = "safe"

	// ClassIndeterminate means the check could not reach a verdict
	// (ambiguous provenance, lookup failure, or deadline expiry).
	ClassIndeterminate Classification = "indeterminate"
)

// Rank returns an integer severity rank for sorting (Exposed highest).
func (c Classification) Rank() int {
	switch c {
	case ClassExposed:
		return 3
	case ClassVersionMismatch:
		return 2
	case ClassIndeterminate:
		return 1
	default:
		return 0
	}
}

func (c Classification) String() string { return string(c) }

// Finding is the classification result for a single PackageRef. Exactly one
// Finding is produced per input ref per run, and it is never mutated after
// creation. Record carries the registry evidence when a lookup completed;
// Error carries the failure detail otherwise.
type Finding struct {
	Package        PackageRef       `json:"package"`
	Classification Classification   `json:"classification"`
	Record         *registry.Record `json:"record,omitempty"`
	Error          string           `json:"error,omitempty"`
	CheckedAt      time.Time        `json:"checked_at"`
}
