// Package phash computes perceptual difference hashes of cover images.
// Hashes are logged during identification so near-duplicate scans can be
// spotted across runs; they do not influence resolution.
package phash
