package inventory

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
)

// Parser reads one manifest format into an ordered package list. The
// returned refs preserve the manifest's declaration order and carry the
// ecosystem of the registry they should be checked against.
type Parser interface {
	Type() string
	Supports(name string) bool
	Parse(manifestPath string) ([]confusion.PackageRef, error)
}

var parsers = []Parser{
	&Requirements{},
	&PackageJSON{},
}

// ForFile selects a parser by the manifest's base name.
func ForFile(manifestPath string) (Parser, error) {
	name := filepath.Base(manifestPath)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported manifest file: %s", name)
}

// Assigner sets the declared source of packages whose manifest does not
// state one, using configured name patterns. Patterns are shell globs
// matched against the package name, an exact name also matches.
type Assigner struct {
	internal []string
	public   []string
}

func NewAssigner(internalPatterns, publicPatterns []string) *Assigner {
	return &Assigner{internal: internalPatterns, public: publicPatterns}
}

// Apply fills in Source for refs still marked unknown. Internal patterns
// win over public ones. Refs with an explicit source are left untouched.
func (a *Assigner) Apply(refs []confusion.PackageRef) {
	for i := range refs {
		if refs[i].Source != confusion.SourceUnknown {
			continue
		}
		switch {
		case matchAny(a.internal, refs[i].Name):
			refs[i].Source = confusion.SourceInternal
		case matchAny(a.public, refs[i].Name):
			refs[i].Source = confusion.SourcePublic
		}
	}
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
