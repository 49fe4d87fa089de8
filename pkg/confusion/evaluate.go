package confusion

import (
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
)

// OwnershipVerifier decides whether a public registry record for an
// internal package name can be attributed to the internal owner. Registries
// expose no portable identity mechanism, so the predicate is pluggable;
// organizations typically encode ownership in naming conventions or
// allowlists.
type OwnershipVerifier func(ref PackageRef, rec *registry.Record) bool

// ConfirmNone is the conservative default verifier: ownership is never
// confirmed, so any public package shadowing an internal name is treated as
// hijackable.
func ConfirmNone(PackageRef, *registry.Record) bool { return false }

// TrustedPrefixes confirms ownership for names carrying one of the given
// prefixes (e.g., "@acme/" scopes on npm, "acme-" on PyPI). Useful when the
// organization has claimed its naming prefix on the public registry.
func TrustedPrefixes(prefixes ...string) OwnershipVerifier {
	return func(ref PackageRef, _ *registry.Record) bool {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(ref.Name, p) {
				return true
			}
		}
		return false
	}
}

// Evaluator applies the classification decision table. It performs no I/O
// and never blocks; all registry interaction happens before Evaluate is
// called.
type Evaluator struct {
	verify OwnershipVerifier
}

// NewEvaluator creates an Evaluator with the given ownership verifier.
// A nil verifier falls back to [ConfirmNone].
func NewEvaluator(verify OwnershipVerifier) *Evaluator {
	if verify == nil {
		verify = ConfirmNone
	}
	return &Evaluator{verify: verify}
}

// Evaluate classifies one package against its registry record. The
// classification is a pure function of (ref.Source, rec, ownership):
//
//	internal  missing     → exposed          (name free to claim)
//	internal  unowned     → exposed          (public copy can win resolution)
//	internal  owned       → safe / version-mismatch by version agreement
//	public    present     → safe
//	public    missing     → indeterminate    (renamed, removed, or transient)
//	unknown   *           → indeterminate    (never guess provenance)
func (e *Evaluator) Evaluate(ref PackageRef, rec *registry.Record) Finding {
	return Finding{
		Package:        ref,
		Classification: e.classify(ref, rec),
		Record:         rec,
		CheckedAt:      time.Now().UTC(),
	}
}

func (e *Evaluator) classify(ref PackageRef, rec *registry.Record) Classification {
	if rec == nil {
		return ClassIndeterminate
	}
	switch ref.Source {
	case SourceInternal:
		if !rec.Exists {
			return ClassExposed
		}
		if !e.verify(ref, rec) {
			return ClassExposed
		}
		if versionsAgree(ref.Version, rec.LatestVersion) {
			return ClassSafe
		}
		return ClassVersionMismatch

	case SourcePublic:
		if rec.Exists {
			return ClassSafe
		}
		return ClassIndeterminate

	default:
		return ClassIndeterminate
	}
}

// versionsAgree reports whether the installed version matches the
// registry's latest. Versions are compared semantically where possible,
// falling back to string equality for unparseable version strings. A
// missing version on either side never agrees.
func versionsAgree(installed, latest string) bool {
	if installed == "" || latest == "" {
		return false
	}
	iv, err1 := goversion.NewVersion(installed)
	lv, err2 := goversion.NewVersion(latest)
	if err1 != nil || err2 != nil {
		return installed == latest
	}
	return iv.Equal(lv)
}
