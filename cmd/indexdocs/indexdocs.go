package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"policypath/config"
	"policypath/services/refindex"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

// indexdocs loads constitutional reference texts into the Pinecone index
// that grounds quiz generation. Source files are plain text or markdown,
// one or more articles per file.

type referenceChunk struct {
	ID      string
	Article string
	Content string
}

var articleHeadingRegex = regexp.MustCompile(`(?m)^(?:#{1,6}\s+)?(Article\s+\d+[A-Z]*)\b`)

func main() {
	docsDir := flag.String("docs", "reference", "directory of reference documents to index")
	flag.Parse()

	log.Printf("[INFO] Starting reference indexing from %s", *docsDir)

	cfg := config.Load()

	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(cfg.OpenAIAPIKey),
	)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create OpenAI client: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create embedder: %v", err)
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.PineconeAPIKey,
	})
	if err != nil {
		log.Fatalf("[ERROR] Failed to create Pinecone client: %v", err)
	}

	if err := ensurePineconeIndex(pc, cfg.PineconeIndexName); err != nil {
		log.Fatalf("[ERROR] Failed to ensure Pinecone index: %v", err)
	}

	files, err := referenceFiles(*docsDir)
	if err != nil {
		log.Fatalf("[ERROR] Failed to list reference documents: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("[ERROR] No reference documents found in %s", *docsDir)
	}

	for _, file := range files {
		log.Printf("[INFO] Indexing %s", file)
		if err := processFile(pc, cfg.PineconeIndexName, file, embedder); err != nil {
			log.Printf("[ERROR] Failed to index %s: %v", file, err)
			continue
		}
		log.Printf("[INFO] Successfully indexed %s", file)
	}

	log.Printf("[INFO] Reference indexing completed")
}

func referenceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".md" || ext == ".txt" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func processFile(pc *pinecone.Client, indexName, path string, embedder embeddings.Embedder) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	chunks := chunkByArticle(filepath.Base(path), string(raw))
	if len(chunks) == 0 {
		log.Printf("[INFO] No content chunks in %s", path)
		return nil
	}
	log.Printf("[INFO] Created %d chunks from %s", len(chunks), path)

	for i, chunk := range chunks {
		vector, err := createVector(chunk, embedder)
		if err != nil {
			return fmt.Errorf("failed to create vector for chunk %d: %w", i+1, err)
		}

		if err := upsertVector(pc, indexName, vector); err != nil {
			return fmt.Errorf("failed to upsert chunk %d: %w", i+1, err)
		}
	}

	return nil
}

// chunkByArticle splits a reference document on "Article N" headings.
// Chunk IDs are deterministic so re-indexing a file overwrites its old
// vectors instead of duplicating them.
func chunkByArticle(fileName, content string) []referenceChunk {
	locations := articleHeadingRegex.FindAllStringSubmatchIndex(content, -1)

	if len(locations) == 0 {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return nil
		}
		return []referenceChunk{{
			ID:      fmt.Sprintf("ref_%s_chunk_0", sanitizeID(fileName)),
			Article: "",
			Content: trimmed,
		}}
	}

	var chunks []referenceChunk

	// Preamble before the first article heading.
	if preamble := strings.TrimSpace(content[:locations[0][0]]); preamble != "" {
		chunks = append(chunks, referenceChunk{
			ID:      fmt.Sprintf("ref_%s_preamble", sanitizeID(fileName)),
			Article: "",
			Content: preamble,
		})
	}

	for i, loc := range locations {
		end := len(content)
		if i+1 < len(locations) {
			end = locations[i+1][0]
		}

		article := content[loc[2]:loc[3]]
		body := strings.TrimSpace(content[loc[0]:end])
		if body == "" {
			continue
		}

		chunks = append(chunks, referenceChunk{
			ID:      fmt.Sprintf("ref_%s_%s", sanitizeID(fileName), sanitizeID(article)),
			Article: article,
			Content: body,
		})
	}

	return chunks
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

func createVector(chunk referenceChunk, embedder embeddings.Embedder) (*pinecone.Vector, error) {
	ctx := context.Background()

	vectors, err := embedder.EmbedDocuments(ctx, []string{chunk.Content})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	metadata, err := structpb.NewStruct(map[string]any{
		"article":    chunk.Article,
		"content":    chunk.Content,
		"created_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata struct for chunk %s: %w", chunk.ID, err)
	}

	return &pinecone.Vector{
		Id:       chunk.ID,
		Values:   &vectors[0],
		Metadata: metadata,
	}, nil
}

func upsertVector(pc *pinecone.Client, indexName string, vector *pinecone.Vector) error {
	ctx := context.Background()

	idxDesc, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: refindex.Namespace,
	})
	if err != nil {
		return fmt.Errorf("failed to create index connection: %w", err)
	}

	_, err = idxConn.UpsertVectors(ctx, []*pinecone.Vector{vector})
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	return nil
}

func ensurePineconeIndex(pc *pinecone.Client, indexName string) error {
	ctx := context.Background()

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			log.Printf("[INFO] Index %s already exists", indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", indexName)
	dimension := int32(1536) // OpenAI ada-002 embedding dimension
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"project": "policypath-reference"},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", indexName)
			break
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", indexName)
		time.Sleep(10 * time.Second)
	}

	return nil
}
