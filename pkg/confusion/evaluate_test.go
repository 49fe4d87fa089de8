package confusion

import (
	"testing"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
)

func TestEvaluateClassification(t *testing.T) {
	tests := []struct {
		name   string
		ref    PackageRef
		rec    *registry.Record
		verify OwnershipVerifier
		want   Classification
	}{
		{
			name: "internal name absent from registry",
			ref:  PackageRef{Name: "internal-auth-lib", Version: "1.0.0", Source: SourceInternal},
			rec:  &registry.Record{Exists: false},
			want: ClassExposed,
		},
		{
			name: "internal name present and unconfirmed",
			ref:  PackageRef{Name: "internal-auth-lib", Version: "1.0.0", Source: SourceInternal},
			rec:  &registry.Record{Exists: true, LatestVersion: "1.0.0"},
			want: ClassExposed,
		},
		{
			name:   "internal name present, confirmed, same version",
			ref:    PackageRef{Name: "acme-core", Version: "2.3.1", Source: SourceInternal},
			rec:    &registry.Record{Exists: true, LatestVersion: "2.3.1"},
			verify: func(PackageRef, *registry.Record) bool { return true },
			want:   ClassSafe,
		},
		{
			name:   "internal name present, confirmed, version drift",
			ref:    PackageRef{Name: "acme-core", Version: "2.3.1", Source: SourceInternal},
			rec:    &registry.Record{Exists: true, LatestVersion: "2.4.0"},
			verify: func(PackageRef, *registry.Record) bool { return true },
			want:   ClassVersionMismatch,
		},
		{
			name:   "internal name present, confirmed, local version missing",
			ref:    PackageRef{Name: "acme-core", Source: SourceInternal},
			rec:    &registry.Record{Exists: true, LatestVersion: "2.4.0"},
			verify: func(PackageRef, *registry.Record) bool { return true },
			want:   ClassVersionMismatch,
		},
		{
			name: "public package present",
			ref:  PackageRef{Name: "requests", Version: "2.31.0", Source: SourcePublic},
			rec:  &registry.Record{Exists: true, LatestVersion: "2.32.0"},
			want: ClassSafe,
		},
		{
			name: "public package absent",
			ref:  PackageRef{Name: "requests", Version: "2.31.0", Source: SourcePublic},
			rec:  &registry.Record{Exists: false},
			want: ClassIndeterminate,
		},
		{
			name: "unknown source present",
			ref:  PackageRef{Name: "mystery-pkg", Version: "0.1.0", Source: SourceUnknown},
			rec:  &registry.Record{Exists: true},
			want: ClassIndeterminate,
		},
		{
			name: "unknown source absent",
			ref:  PackageRef{Name: "mystery-pkg", Version: "0.1.0", Source: SourceUnknown},
			rec:  &registry.Record{Exists: false},
			want: ClassIndeterminate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(tt.verify)
			f := ev.Evaluate(tt.ref, tt.rec)
			if f.Classification != tt.want {
				t.Fatalf("got %s, want %s", f.Classification, tt.want)
			}
			if f.Package.Name != tt.ref.Name {
				t.Errorf("finding package = %q, want %q", f.Package.Name, tt.ref.Name)
			}
			if f.CheckedAt.IsZero() {
				t.Error("finding has zero timestamp")
			}
		})
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	ev := NewEvaluator(nil)
	ref := PackageRef{Name: "acme-utils", Version: "1.2.3", Source: SourceInternal}
	rec := &registry.Record{Exists: true, LatestVersion: "1.2.3"}

	first := ev.Evaluate(ref, rec)
	for range 10 {
		if got := ev.Evaluate(ref, rec); got.Classification != first.Classification {
			t.Fatalf("classification changed across calls: %s vs %s", got.Classification, first.Classification)
		}
	}
}

func TestTrustedPrefixes(t *testing.T) {
	verify := TrustedPrefixes("acme-", "@acme/")

	tests := []struct {
		name string
		want bool
	}{
		{"acme-core", true},
		{"@acme/tokens", true},
		{"internal-auth-lib", false},
		{"acmeish", false},
	}
	for _, tt := range tests {
		ref := PackageRef{Name: tt.name, Source: SourceInternal}
		if got := verify(ref, &registry.Record{Exists: true}); got != tt.want {
			t.Errorf("TrustedPrefixes(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVersionsAgree(t *testing.T) {
	tests := []struct {
		local, remote string
		want          bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.0", "1.0.0", true}, // semantically equal
		{"1.0.0", "1.0.1", false},
		{"", "1.0.0", false},
		{"1.0.0", "", false},
		{"", "", false},
		{"not-a-version", "not-a-version", true}, // string fallback
	}
	for _, tt := range tests {
		if got := versionsAgree(tt.local, tt.remote); got != tt.want {
			t.Errorf("versionsAgree(%q, %q) = %v, want %v", tt.local, tt.remote, got, tt.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"internal", SourceInternal, false},
		{"private", SourceInternal, false},
		{"public", SourcePublic, false},
		{"unknown", SourceUnknown, false},
		{"", SourceUnknown, false},
		{"whatever", SourceUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
