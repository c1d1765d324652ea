// Package http serves the newsletter over HTTP: the JSON document, the RSS feed,
// the weekly digest, a status page, admin cache controls and health probes, behind
// a shared middleware chain.
package http
