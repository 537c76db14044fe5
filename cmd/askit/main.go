// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/askit"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/retrieval"
	"github.com/poiesic/askit/reveal"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "askit",
		Usage: "Conversational knowledge retrieval over a curated corpus",
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
				Name:   "seed",
				Usage:  "Load knowledge entries from a JSON file into the corpus",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file with knowledge entries",
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
				},
			},
			{
				Name:      "search",
				Usage:     "Run hybrid retrieval against the corpus and print ranked results",
				Action:    searchCommand,
				ArgsUsage: "<query>",
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
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Restrict results to a language code",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict results to a category",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: retrieval.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum vector similarity",
						Value: retrieval.DefaultThreshold,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question and watch the reasoning reveal while the answer is generated",
				Action:    askCommand,
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "AI service host URL for embeddings and generation",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "generation-model",
						Usage: "Generation model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Restrict retrieval to a language code",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of context entries",
						Value: retrieval.DefaultTopK,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// seedEntry is the JSON shape of one corpus entry in a seed file.
type seedEntry struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Language string   `json:"language"`
}

func seedCommand(c *cli.Context) error {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	engine, err := askit.NewEngine(c.String("db"), askit.WithAIConfig(config))
	if err != nil {
		return err
	}
	defer engine.Close()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return err
	}

	var seeds []seedEntry
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("error parsing seed file: %w", err)
	}

	entries := make([]*core.KnowledgeEntry, len(seeds))
	for i, seed := range seeds {
		entries[i] = &core.KnowledgeEntry{
			Title:    seed.Title,
			Content:  seed.Content,
			Category: core.Category(seed.Category),
			Tags:     seed.Tags,
			Language: seed.Language,
			IsActive: true,
		}
	}

	pipeline, err := engine.NewIngestPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(c.Context, entries...)
	if err != nil {
		return err
	}

	// Embeddings run on the pool; don't exit before they land.
	pipeline.Wait()

	fmt.Printf("Seeded %d entries\n", len(added))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query argument is required")
	}

	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	engine, err := askit.NewEngine(c.String("db"), askit.WithAIConfig(config))
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := retrieval.DefaultOptions()
	opts.Language = c.String("language")
	opts.Category = core.Category(c.String("category"))
	opts.TopK = c.Int("top-k")
	opts.Threshold = c.Float64("threshold")

	results := engine.Search(c.Context, query, opts)
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. %s [%s] score=%.4f (vector=%.4f keyword=%.4f, %s)\n",
			i+1, result.Entry.Title, result.Entry.Category,
			result.HybridScore, result.VectorScore, result.KeywordScore,
			result.Provenance)
		if len(result.MatchedKeywords) > 0 {
			fmt.Printf("   matched: %s\n", strings.Join(result.MatchedKeywords, ", "))
		}
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question argument is required")
	}

	config := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
	)

	engine, err := askit.NewEngine(c.String("db"),
		askit.WithAIConfig(config),
		askit.WithRevealListener(&consoleListener{}),
	)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := retrieval.DefaultOptions()
	opts.Language = c.String("language")
	opts.TopK = c.Int("top-k")

	done := make(chan *core.Answer, 1)
	err = engine.Ask(c.Context, question, opts, func(answer *core.Answer) {
		done <- answer
	})
	if err != nil {
		return err
	}

	select {
	case answer := <-done:
		fmt.Printf("\n%s\n", answer.Text)
		if len(answer.Suggestions) > 0 {
			fmt.Printf("\nRelated: %s\n", strings.Join(answer.Suggestions, ", "))
		}
		if answer.ResponseTime > 0 {
			fmt.Printf("(answered in %s)\n", answer.ResponseTime.Round(10*time.Millisecond))
		}
	case <-c.Context.Done():
		return c.Context.Err()
	}
	return nil
}

// consoleListener renders reveal progress on stdout.
type consoleListener struct{}

func (l *consoleListener) StepShown(_ int, step core.ReasoningStep) {
	fmt.Printf("  [%s] %s\n", step.Icon, step.Text)
}

func (l *consoleListener) Waiting() {
	fmt.Println("  ...")
}

func (l *consoleListener) Finalized(_ *core.Answer) {}

var _ reveal.Listener = (*consoleListener)(nil)

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
