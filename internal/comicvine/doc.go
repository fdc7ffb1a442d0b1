// Package comicvine talks to the Comic Vine catalog API.
//
// Client shapes the three read operations the resolver needs (volume search,
// issue listing, issue detail) into internal records. Throttle wraps the
// transport with the catalog's pacing rules: a 4 second minimum between
// calls, a rolling budget of 199 calls per hour, and an hour-long cancellable
// wait-and-retry when the server answers with HTTP 420. Every caller in a run
// shares one Throttle so the budget is global.
package comicvine
