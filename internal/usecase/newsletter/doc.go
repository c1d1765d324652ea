// Package newsletter generates the curated newsletter artifact.
//
// A Service sends the rendered prompt to a generator.Generator through a
// resilience.Executor, turns the free-form answer into a validated newsletter and
// keeps the result in a cache.Cache. Malformed JSON gets exactly one repair call
// before the fetch fails.
package newsletter
