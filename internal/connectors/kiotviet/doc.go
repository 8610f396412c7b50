// Package kiotviet talks to the KiotViet public API.
//
// The API has two quirks the fetcher works around: every list endpoint
// returns a fixed page of 20 items regardless of the requested page
// size, and the "total" field on responses is not always consistent
// with the data actually returned. Pagination therefore advances the
// offset by exactly 20 per request and is bounded by a hard request
// ceiling rather than trusting the reported total.
//
// Authentication is an OAuth2 client-credentials exchange against the
// KiotViet identity server; every API call additionally carries the
// retailer's shop name in the Retailer header.
package kiotviet
