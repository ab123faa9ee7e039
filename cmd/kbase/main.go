// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/askuni/kbase"
	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/backfill"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/ingestion"
	"github.com/askuni/kbase/search"
)

func main() {
	app := &cli.App{
		Name:  "kbase",
		Usage: "Hybrid search knowledge base for crawled university content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest crawled documents from a JSON file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a JSON file containing an array of documents",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.BoolFlag{
						Name:  "no-embed",
						Usage: "Skip embedding generation (backfill later)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for embedding generation",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search the knowledge base",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (text, vector, hybrid)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum cosine similarity for vector mode",
						Value: search.DefaultSimilarityThreshold,
					},
					&cli.Float64Flag{
						Name:  "text-weight",
						Usage: "Lexical weight for hybrid fusion",
						Value: search.DefaultTextWeight,
					},
					&cli.Float64Flag{
						Name:  "vector-weight",
						Usage: "Vector weight for hybrid fusion",
						Value: search.DefaultVectorWeight,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.BoolFlag{
						Name:  "no-embed",
						Usage: "Disable the vector leg (lexical only)",
					},
				},
			},
			{
				Name:   "ask",
				Usage:  "Ask a question and get a formatted answer",
				Action: askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "backfill",
				Usage:  "Generate embeddings for documents that are missing them",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-embed every document, not just those missing vectors",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show knowledge base statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openKnowledgeBase(ctx context.Context, c *cli.Context) (*kbase.KnowledgeBase, error) {
	opts := []kbase.KnowledgeBaseOption{}
	if c.Bool("no-embed") {
		opts = append(opts, kbase.WithoutEmbedder())
	} else {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid AI configuration: %w", err)
		}
		opts = append(opts, kbase.WithAIConfig(aiConfig))
	}
	return kbase.Open(ctx, c.String("db"), opts...)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var docs []*core.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("input file contains no documents")
	}

	kb, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	var pipelineOpts []ingestion.Option
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(size))
	}

	pipeline, err := kb.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	accepted, err := pipeline.Ingest(ctx, docs...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %d of %d documents\n", accepted, len(docs))

	// Wait for the async embedding workers so vectors are not lost to exit.
	pipeline.Wait()

	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	kb, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	searcher, err := kb.NewSearcher(
		search.WithWeights(c.Float64("text-weight"), c.Float64("vector-weight")),
	)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	limit := c.Int("limit")
	var results []*core.SearchResult

	switch c.String("mode") {
	case "text":
		results, err = searcher.TextSearch(ctx, query, limit)
	case "vector":
		results, err = searcher.VectorSearch(ctx, query, limit, c.Float64("threshold"))
	case "hybrid":
		results, err = searcher.HybridSearch(ctx, query, limit)
	default:
		return fmt.Errorf("invalid mode %q: must be one of text, vector, hybrid", c.String("mode"))
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.4f] %s\n", i+1, result.Score, result.Document.Title)
		fmt.Printf("   %s\n", result.Document.URL)
		if result.Document.Category != "" {
			fmt.Printf("   Category: %s\n", result.Document.Category)
		}
	}

	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	// Formatted answers are lexical-only, so no embedder is needed here.
	kb, err := kbase.Open(ctx, c.String("db"), kbase.WithoutEmbedder())
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	answer, err := answerQuestion(ctx, kb, question)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Println(answer)
	return nil
}

// answerQuestion serves a formatted answer for the question, consulting the
// response cache before searching and storing the answer after.
func answerQuestion(ctx context.Context, kb *kbase.KnowledgeBase, question string) (string, error) {
	if answer, ok := kb.ResponseCache().Get(question); ok {
		return answer, nil
	}

	searcher, err := kb.NewSearcher()
	if err != nil {
		return "", err
	}

	answer, err := searcher.SearchText(ctx, question)
	if err != nil {
		return "", err
	}

	kb.ResponseCache().Put(question, answer)
	return answer, nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	kb, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	// Create backfill config
	backfillConfig := &backfill.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Force:          c.Bool("force"),
	}

	// Validate config
	if backfillConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if backfillConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if backfillConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	backfiller := kb.NewBackfiller(backfillConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := backfiller.Run(ctx); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	kb, err := kbase.Open(ctx, c.String("db"), kbase.WithoutEmbedder())
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	total, err := kb.DocumentRepository().CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	fmt.Printf("Documents: %d\n", total)
	fmt.Printf("Indexed:   %d\n", kb.Index().Len())

	embedded := 0
	docs, err := kb.DocumentRepository().GetAllDocuments(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	for _, doc := range docs {
		if len(doc.Embedding) > 0 {
			embedded++
		}
	}
	fmt.Printf("Embedded:  %d\n", embedded)

	now := time.Now().UTC()
	recent, err := kb.DocumentRepository().GetDocumentsByDateRange(ctx, now.AddDate(0, 0, -30), now)
	if err != nil {
		return fmt.Errorf("failed to count recent documents: %w", err)
	}
	fmt.Printf("Crawled in the last 30 days: %d\n", len(recent))

	fmt.Println("\nBy category:")
	for _, category := range core.Categories {
		docs, err := kb.DocumentRepository().GetDocumentsByCategory(ctx, category, 0)
		if err != nil {
			return fmt.Errorf("failed to count category %q: %w", category, err)
		}
		fmt.Printf("  %-15s %d\n", category, len(docs))
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
