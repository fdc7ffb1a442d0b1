// Package comicinfo generates ComicInfo.xml documents from resolved catalog
// issue records.
package comicinfo
