// Package services defines the shared error taxonomy for the resolution
// pipeline and its collaborators.
//
// Sentinel errors classify failures by recovery policy: parse, transport,
// not-found, and operator-abort failures skip the current file while the run
// continues; configuration errors halt before any file is touched. Wrap tags
// an error with one of these markers plus component context so callers can
// classify with errors.Is without parsing messages.
package services
