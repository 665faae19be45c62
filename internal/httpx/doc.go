// Package httpx provides the HTTP client shared by the scraper and the
// download engine.
//
// The client presents a realistic browser User-Agent, since some
// directory-index hosts block obviously scripted clients. Listing page
// fetches carry a short timeout; download streams rely on context
// cancellation instead so large files are not cut off mid-transfer.
package httpx
