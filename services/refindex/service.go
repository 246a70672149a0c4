package refindex

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const Namespace = "policypath-reference"

// Service retrieves constitutional reference passages by topic. The index
// is populated by cmd/indexdocs from the source articles.
type Service struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewService(apiKey, openaiAPIKey, indexName string) (*Service, error) {
	log.Printf("[INFO] Initializing reference index service")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	service := &Service{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}

	log.Printf("[INFO] Reference index service initialized successfully")
	return service, nil
}

// QueryTopicChunks returns up to limit reference passages relevant to the
// given topics, shuffled so repeated quizzes do not always ground on the
// same passages.
func (s *Service) QueryTopicChunks(topics []string, limit int) ([]string, error) {
	log.Printf("[INFO] Querying reference index for topics: %v with limit: %d", topics, limit)

	ctx := context.Background()

	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	var allChunks []string

	for _, topic := range topics {
		queryEmbeddings, err := s.embedder.EmbedDocuments(ctx, []string{topic})
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for topic %q: %v", topic, err)
			continue
		}

		result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          queryEmbeddings[0],
			TopK:            10,
			IncludeValues:   false,
			IncludeMetadata: true,
		})
		if err != nil {
			log.Printf("[ERROR] Failed to query vectors for topic %q: %v", topic, err)
			continue
		}

		log.Printf("[INFO] Retrieved %d passages for topic %q", len(result.Matches), topic)

		for _, match := range result.Matches {
			if match.Vector.Metadata == nil {
				continue
			}
			metadata := match.Vector.Metadata.AsMap()

			article, _ := metadata["article"].(string)
			content, _ := metadata["content"].(string)
			if content == "" {
				continue
			}

			if article != "" {
				allChunks = append(allChunks, fmt.Sprintf("Article: %s\nContent: %s", article, content))
			} else {
				allChunks = append(allChunks, "Content: "+content)
			}
		}
	}

	if len(allChunks) == 0 {
		log.Printf("[WARN] No reference passages found for topics: %v", topics)
		return []string{}, nil
	}

	shuffleStrings(allChunks)

	if len(allChunks) > limit {
		allChunks = allChunks[:limit]
	}

	log.Printf("[INFO] Returning %d reference passages", len(allChunks))
	return allChunks, nil
}

func shuffleStrings(slice []string) {
	for i := range slice {
		j := rand.Intn(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}
