// Package main is the radassist CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/config"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/dedup"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/embedding"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/extract"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/flashcards"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/ingest"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/kb"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/rag"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/server"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/radassist/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "radassist server" from the project dir uses the
// project's config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask", "query":
		runAsk()
	case "review":
		runReview()
	case "import":
		runImport()
	case "dedup":
		runDedup()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("radassist version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Pipeline,
		components.Knowledge,
		components.Orchestrator,
		components.Cards,
		components.Dedup,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if err := components.Knowledge.Save(); err != nil {
		logger.Warn("knowledge base save failed", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: radassist ingest [flags] <file-or-directory>...")
		os.Exit(1)
	}

	_, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	paths, err := collectDocumentPaths(fs.Args())
	if err != nil {
		fmt.Printf("Failed to resolve paths: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Println("No supported documents found")
		os.Exit(1)
	}

	result := components.Pipeline.ProcessDocuments(context.Background(), paths)
	fmt.Printf("Processed %d file(s), %d chunk(s)\n", result.Processed, result.TotalChunks)
	for _, failed := range result.FailedFiles {
		fmt.Printf("  failed: %s\n", failed)
	}
	if !result.Success {
		os.Exit(1)
	}
}

// collectDocumentPaths expands directories into their supported files.
func collectDocumentPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// Let the pipeline report it as a failed file.
			paths = append(paths, arg)
			continue
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if extract.Supported(strings.ToLower(filepath.Ext(path))) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	topK := fs.Int("top-k", 0, "number of retrieved passages (0 = config default)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: radassist ask [flags] <question>")
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: radassist ask [flags] <question>")
		os.Exit(1)
	}

	var response *models.QueryResponse
	if *serverURL != "" {
		// Use HTTP API when the server is running (avoids index lock conflict).
		res, err := askViaHTTP(*serverURL, question, *topK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		response = res
	} else {
		_, logger, components := mustInitialize(*configPath)
		defer logger.Sync()
		defer components.Close()

		res, err := components.Orchestrator.Ask(context.Background(), question, *topK, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		response = res
	}

	fmt.Println(response.Answer)
	if response.Degraded {
		fmt.Println("\n(generation backend unavailable; answer from built-in study notes)")
	}
	if len(response.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range response.Sources {
			fmt.Printf("  %d. %s", i+1, src.Source)
			if src.Section != "" {
				fmt.Printf(" | %s", src.Section)
			}
			fmt.Printf(" (relevance %.1f)\n", src.Relevance)
		}
	}
}

func askViaHTTP(serverURL, question string, topK int) (*models.QueryResponse, error) {
	body, err := json.Marshal(map[string]interface{}{"question": question, "top_k": topK})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// runReview handles "review due" (list cards due today) and
// "review <card-id>=<quality>..." (grade one or more cards as a session).
func runReview() {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	deck := fs.String("deck", "radiology", "deck name recorded on the session")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: radassist review due")
		fmt.Println("       radassist review <card-id>=<quality> [<card-id>=<quality>...]")
		os.Exit(1)
	}

	_, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	if fs.Arg(0) == "due" {
		due := components.Cards.DueCards(time.Now(), "")
		if len(due) == 0 {
			fmt.Println("No cards due")
			return
		}
		for _, card := range due {
			fmt.Printf("%s  [%s]  %s\n", card.CardID, card.DeckName, utils.Truncate(card.Front, 80))
		}
		fmt.Printf("\n%d card(s) due\n", len(due))
		return
	}

	components.Sessions.Start(*deck, time.Now())
	for _, arg := range fs.Args() {
		id, qualityStr, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Printf("Skipping %q: expected <card-id>=<quality>\n", arg)
			continue
		}
		quality, err := strconv.Atoi(qualityStr)
		if err != nil {
			fmt.Printf("Skipping %q: quality must be 0-5\n", arg)
			continue
		}
		card, err := components.Cards.Review(id, quality, time.Now())
		if err != nil {
			fmt.Printf("Review failed for %s: %v\n", id, err)
			continue
		}
		components.Sessions.Record(quality)
		fmt.Printf("%s: interval %d day(s), next review %s\n", card.CardID, card.IntervalDays, card.NextReview)
	}
	session, err := components.Sessions.Finish(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session %s: %d reviewed, %d correct\n", session.SessionID, session.CardsReviewed, session.CardsCorrect)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: radassist import [flags] <deck.apkg|deck.xlsx>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	_, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	var cards []*models.FlashCard
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".apkg":
		cards, err = flashcards.ImportAPKG(path, logger)
	case ".xlsx":
		cards, err = flashcards.ImportXLSX(path, logger)
	default:
		fmt.Printf("Unsupported deck format: %s (use .apkg or .xlsx)\n", path)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Cards.Add(cards...); err != nil {
		fmt.Printf("Failed to store cards: %v\n", err)
		os.Exit(1)
	}
	if err := components.CardIndex.IndexCards(cards...); err != nil {
		logger.Warn("card index update failed", zap.Error(err))
	}
	fmt.Printf("Imported %d card(s) from %s\n", len(cards), filepath.Base(path))
}

func runDedup() {
	fs := flag.NewFlagSet("dedup", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	apply := fs.Bool("apply", false, "remove duplicates (default is report only)")
	similar := fs.Bool("similar", false, "also remove the lowest (similar) tier when applying")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	groups := components.Dedup.FindDuplicates(components.Cards.All())
	if len(groups) == 0 {
		fmt.Println("No duplicates found")
		return
	}
	for _, g := range groups {
		fmt.Printf("%s  keeps %s, drops %s (%.2f)\n",
			g.Tier, g.PrimaryCardID, strings.Join(g.DuplicateCardIDs, ", "), g.Similarity)
	}
	if !*apply {
		fmt.Printf("\n%d group(s) found; re-run with --apply to remove\n", len(groups))
		return
	}

	result, err := components.Dedup.RemoveDuplicates(components.Cards, groups, dedup.RemoveOptions{
		Exact:       true,
		VerySimilar: true,
		Similar:     *similar,
	})
	if err != nil {
		fmt.Printf("Removal failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.CardIndex.RemoveCards(result.Removed...); err != nil {
		logger.Warn("card index update failed", zap.Error(err))
	}
	fmt.Printf("Removed %d card(s), kept %d; backup at %s\n",
		len(result.Removed), result.Kept, result.BackupPath)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	status := components.Knowledge.Status()
	due := len(components.Cards.DueCards(time.Now(), ""))

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := map[string]interface{}{
			"knowledge_base": status,
			"cards":          components.Cards.Len(),
			"cards_due":      due,
		}
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("text_chunks:   %d (ready: %t)\n", status.TextChunks, status.TextReady)
		if status.TextReason != "" {
			fmt.Printf("  reason:      %s\n", status.TextReason)
		}
		fmt.Printf("image_chunks:  %d (ready: %t)\n", status.ImageChunks, status.ImageReady)
		if status.ImageReason != "" {
			fmt.Printf("  reason:      %s\n", status.ImageReason)
		}
		fmt.Printf("cards:         %d\n", components.Cards.Len())
		fmt.Printf("cards_due:     %d\n", due)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// mustInitialize loads config, builds a logger, and initializes all components.
// Exits the process on failure.
func mustInitialize(configPath string) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return cfg, logger, components
}

// Components holds initialized services.
type Components struct {
	Knowledge    *kb.KnowledgeBase
	Embedder     embedding.Embedder
	Pipeline     *ingest.Pipeline
	Cards        *flashcards.Store
	CardIndex    *flashcards.Index
	Sessions     *flashcards.SessionLog
	Dedup        *dedup.Engine
	Orchestrator *rag.Orchestrator
}

func (c *Components) Close() {
	if c.Knowledge != nil {
		_ = c.Knowledge.Close()
	}
	if c.CardIndex != nil {
		_ = c.CardIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("embedding model unavailable, using deterministic fallback", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	knowledge, err := kb.Open(kb.Paths{
		Database:   cfg.Storage.DatabasePath,
		TextIndex:  cfg.Storage.VectorIndexPath,
		ImageIndex: cfg.Storage.ImageIndexPath,
	}, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}

	ledger, err := ingest.NewLedger(cfg.Storage.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	pipeline := ingest.NewPipeline(knowledge, ledger, cfg.Chunking, cfg.Ingest, logger)

	cards, err := flashcards.NewStore(cfg.Storage.CardsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open card store: %w", err)
	}
	cardIndex, err := flashcards.NewIndex(cfg.Storage.CardIndexPath, cards)
	if err != nil {
		return nil, fmt.Errorf("failed to open card index: %w", err)
	}
	sessions, err := flashcards.NewSessionLog(cfg.Storage.SessionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	generator := rag.NewOllamaGenerator(cfg.Generation)
	orchestrator := rag.NewOrchestrator(knowledge, cardIndex, generator, logger)

	return &Components{
		Knowledge:    knowledge,
		Embedder:     embedder,
		Pipeline:     pipeline,
		Cards:        cards,
		CardIndex:    cardIndex,
		Sessions:     sessions,
		Dedup:        dedup.NewEngine(cfg.Dedup, logger),
		Orchestrator: orchestrator,
	}, nil
}

func printUsage() {
	fmt.Println(`radassist - Radiology board exam study assistant

Usage:
  radassist server [flags]                 Start the HTTP server
  radassist ingest [flags] <path>...       Ingest study documents (pdf, pptx, docx, txt, ...)
  radassist ask [flags] <question>         Ask a question over the ingested material
  radassist review due                     List cards due for review
  radassist review <id>=<quality>...       Grade cards (quality 0-5)
  radassist import [flags] <deck>          Import flashcards (.apkg or .xlsx)
  radassist dedup [flags]                  Find (and optionally remove) duplicate cards
  radassist status [flags]                 Show knowledge base and card counts
  radassist version                        Show version
  radassist help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/radassist/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --top-k int        Number of retrieved passages (default from config)

Dedup Flags:
  --apply            Remove duplicates instead of only reporting them
  --similar          Also remove the lowest (similar) tier when applying

Examples:
  radassist server
  radassist ingest ~/Radiology/CORE
  radassist ask "What is the annual occupational dose limit?"
  radassist import physics_deck.apkg
  radassist review due
  radassist review anki-1001=4 anki-1002=2
  radassist dedup --apply
  radassist status --output json`)
}
