package models

// OllamaEmbedRequest is the request body for the Ollama /api/embed endpoint,
// which accepts a batch of inputs in one call.
type OllamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// OllamaEmbedResponse carries one embedding per input, in input order.
type OllamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}
