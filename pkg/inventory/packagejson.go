package inventory

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
)

// PackageJSON parses package.json files. It extracts dependencies,
// devDependencies, and peerDependencies, sorted by name within each
// section so output order is stable.
type PackageJSON struct{}

func (p *PackageJSON) Type() string              { return "package.json" }
func (p *PackageJSON) Supports(name string) bool { return strings.EqualFold(name, "package.json") }

func (p *PackageJSON) Parse(manifestPath string) ([]confusion.PackageRef, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}

	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var refs []confusion.PackageRef
	for _, section := range []map[string]string{pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies} {
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			refs = append(refs, confusion.PackageRef{
				Name:      name,
				Version:   exactVersion(section[name]),
				Source:    confusion.SourceUnknown,
				Ecosystem: "npm",
			})
		}
	}

	return refs, nil
}

// exactVersion extracts a concrete version from a semver specifier. Only
// exact pins qualify; caret/tilde and other ranges yield no version.
func exactVersion(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.HasPrefix(spec, "^") || strings.HasPrefix(spec, "~") {
		return ""
	}
	spec = strings.TrimPrefix(spec, "=")
	spec = strings.TrimPrefix(spec, "v")
	if spec == "" || strings.ContainsAny(spec, " <>|*x") {
		return ""
	}
	return spec
}

type packageFile struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}
