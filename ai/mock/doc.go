// Package mock provides test doubles for the ai package interfaces.
//
// The mocks generate deterministic embeddings (same text always produces the
// same vector) so that retrieval tests are reproducible without a running
// embedding service, and a scriptable generator whose delay and error can be
// controlled by reveal-timing tests.
package mock
