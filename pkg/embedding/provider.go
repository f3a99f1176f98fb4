package embedding

// EmbeddingProvider turns text into a 768-dim vector. taskType distinguishes
// indexing ("RETRIEVAL_DOCUMENT") from querying ("RETRIEVAL_QUERY") for
// providers that support asymmetric embeddings.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
