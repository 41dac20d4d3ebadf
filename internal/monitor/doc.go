// Package monitor drives the ingestion loop.
//
// It polls the venue for trades and order books across a dynamic watched
// market set, deduplicates trades against recently stored events, persists
// what survives, and publishes each stored event to subscribers.
package monitor
