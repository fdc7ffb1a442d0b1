// Package archive reads and rewrites comic book archives. CBZ files are zip
// archives and fully supported; CBR files are recognized so the organizer can
// move them, but their contents are never touched.
package archive
