package inventory

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
)

var (
	reqLineRE   = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)(?:\[[^\]]*\])?\s*(==\s*\S+)?`)
	normalizeRE = regexp.MustCompile(`[-_.]+`)
)

// Requirements parses requirements.txt files, including pip freeze output.
// Only exact "==" pins carry a version; ranges and bare names do not.
type Requirements struct{}

func (r *Requirements) Type() string { return "requirements.txt" }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (r *Requirements) Parse(manifestPath string) ([]confusion.PackageRef, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	var refs []confusion.PackageRef

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		// Direct references (URLs, VCS, local paths) have no registry name.
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		m := reqLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := normalizeName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true

		var version string
		if m[2] != "" {
			version = strings.TrimSpace(strings.TrimPrefix(m[2], "=="))
		}
		refs = append(refs, confusion.PackageRef{
			Name:      name,
			Version:   version,
			Source:    confusion.SourceUnknown,
			Ecosystem: "pypi",
		})
	}

	return refs, scanner.Err()
}

// normalizeName applies PEP 503 canonicalization: lowercase with runs of
// dots, dashes and underscores collapsed to a single dash.
func normalizeName(name string) string {
	return normalizeRE.ReplaceAllString(strings.ToLower(name), "-")
}
