// Package pypi provides a registry client for the Python Package Index.
//
// # Overview
//
// This package answers existence queries against PyPI (https://pypi.org),
// the default public registry for Python packages and the primary target of
// dependency-confusion attacks on Python projects.
//
// # Usage
//
//	client := pypi.NewClient(backend, 24*time.Hour, "")
//
//	rec, err := client.Lookup(ctx, "requests")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rec.Exists, rec.LatestVersion)
//
// # Record
//
// [Client.Lookup] returns a [registry.Record] containing:
//
//   - Exists: whether the name is claimed on PyPI
//   - LatestVersion: version reported by the JSON API's info block
//   - FirstPublished: upload time of the oldest release, when exposed
//
// PyPI does not expose a maintainer count through the JSON API, so
// MaintainerCount is always zero.
//
// # Name Validation
//
// Names must already be in PEP 503 canonical form (lowercase, hyphens);
// anything else is rejected before any network call.
//
// # Caching
//
// Responses, including not-found results, are cached with the TTL given at
// construction to keep repeated scans off the network.
package pypi
