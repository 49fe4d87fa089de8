// Package inventory reads local dependency manifests into ordered package
// lists for confusion checking. Supported manifests are requirements.txt
// (including pip freeze output) and package.json.
package inventory
