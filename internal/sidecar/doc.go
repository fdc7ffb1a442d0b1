// Package sidecar reads and writes series.json metadata files alongside
// organized series folders. The sidecar doubles as a resolution shortcut:
// a folder with a valid series.json never needs a remote volume search.
package sidecar
