// Command runarr identifies comic book archives against Comic Vine and
// organizes them into a library layout with embedded ComicInfo.xml and
// series.json sidecars.
package main
