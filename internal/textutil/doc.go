// Package textutil provides small string helpers shared across packages:
// filename sanitization, case-folded title comparison, and HTML tag stripping.
package textutil
