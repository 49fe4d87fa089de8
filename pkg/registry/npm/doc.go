// Package npm provides a registry client for the npm public registry.
//
// # Overview
//
// This package answers existence queries against the npm registry
// (https://registry.npmjs.org). npm is where dependency confusion was first
// demonstrated at scale, so unscoped internal package names deserve extra
// suspicion.
//
// # Usage
//
//	client := npm.NewClient(backend, 24*time.Hour, "")
//
//	rec, err := client.Lookup(ctx, "express")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rec.Exists, rec.LatestVersion)
//
// # Record
//
// [Client.Lookup] returns a [registry.Record] containing:
//
//   - Exists: whether the name is claimed on the registry
//   - LatestVersion: the "latest" dist-tag
//   - MaintainerCount: number of maintainers listed on the packument
//   - FirstPublished: the packument's "created" timestamp
//
// # Name Validation
//
// Names follow the registry's rules: lowercase, URL-safe, at most 214
// characters, no leading dot or underscore, with optional @scope/ prefixes.
// Invalid names are rejected before any network call.
package npm
