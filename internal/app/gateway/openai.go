package gateway

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
)

// OpenAITextEmbedder is the alternate TextEmbedder for deployments whose
// stored segment vectors were produced in the OpenAI embedding space.
// Selected via EMBEDDING_PROVIDER=openai.
type OpenAITextEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAITextEmbedder creates an OpenAI-backed text embedder.
func NewOpenAITextEmbedder(apiKey string) *OpenAITextEmbedder {
	return &OpenAITextEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.LargeEmbedding3,
	}
}

// EmbedText generates an embedding for the query text.
func (o *OpenAITextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.RequiredField("text")
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: o.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, errors.Transient(err, "openai embedding request failed")
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned from OpenAI")
	}
	return resp.Data[0].Embedding, nil
}

// ProviderInfo implements TextEmbedder.
func (o *OpenAITextEmbedder) ProviderInfo() ProviderInfo {
	return ProviderInfo{Name: "openai", Model: string(o.model), Dimension: 3072}
}
