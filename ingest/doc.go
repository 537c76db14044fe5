// Package ingest provides pipeline orchestration for loading knowledge
// entries into the corpus.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Validating and storing entries
//   - Generating embeddings asynchronously with retry
//   - Regenerating embeddings when content changes
//
// Embedding work runs on a worker pool; errors there are logged but do not
// fail the ingestion operation.
package ingest
