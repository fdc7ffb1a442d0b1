// Package scanner discovers comic archives under a library root and groups
// them by series folder, the unit the resolver caches on.
package scanner
