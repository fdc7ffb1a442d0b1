// Package organizer moves resolved comics into the library layout
// ("<Series> (<year>)/<Series> V<year> #NNN (<Month Year>).cbz"), embeds
// ComicInfo.xml, and cleans up emptied source folders.
package organizer
