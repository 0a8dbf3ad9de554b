package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ssechho/fanchatbot/internal/adapters/completion"
	httpadapter "github.com/ssechho/fanchatbot/internal/adapters/http"
	"github.com/ssechho/fanchatbot/internal/adapters/identity"
	firestorestore "github.com/ssechho/fanchatbot/internal/adapters/storage/firestore"
	memstore "github.com/ssechho/fanchatbot/internal/adapters/storage/memory"
	"github.com/ssechho/fanchatbot/internal/app/library"
	"github.com/ssechho/fanchatbot/internal/app/session"
	"github.com/ssechho/fanchatbot/internal/app/trending"
	"github.com/ssechho/fanchatbot/internal/config"
	"github.com/ssechho/fanchatbot/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Completion backend: mock or Vertex
	var (
		completionClient domain.CompletionClient
		err              error
	)

	if cfg.UseMockCompletion {
		log.Println("[COMPLETION] Using MOCK completion client")
		completionClient = completion.NewMockClient()
	} else {
		log.Println("[COMPLETION] Using Vertex completion client")
		completionClient, err = completion.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, map[domain.PersonalityKey]string{
			domain.PersonalityIntellectual: cfg.ModelIntellectual,
			domain.PersonalityFunny:        cfg.ModelFunny,
		})
		if err != nil {
			log.Fatalf("error initializing Vertex completion client: %v", err)
		}
	}

	// Storage: Firestore or Memory
	var conversationStore domain.ConversationStore
	var keywordIndex domain.KeywordIndex

	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 2 interfaces
		conversationStore = fsStore
		keywordIndex = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		conversationStore = memstore.NewConversationStore()
		keywordIndex = memstore.NewKeywordIndex()
	}

	// Session registry with idle sweeping
	registry := session.NewRegistry(completionClient, conversationStore, cfg.SessionIdleWindow)
	go registry.RunSweeper(ctx, time.Minute)

	// Keyword library (read-only)
	librarySvc := library.NewService(keywordIndex)

	// Rotating search-term widget state
	rotator := trending.NewRotator(searchTerms(10), trending.DefaultInterval)
	go rotator.Run(ctx)

	// HTTP server
	handler := httpadapter.NewServer(registry, librarySvc, rotator, identity.NewHeaderResolver())

	port := ":" + cfg.Port
	log.Println("Fanchat API listening on port:", port)
	if err := http.ListenAndServe(port, handler); err != nil {
		log.Fatal(err)
	}
}

func searchTerms(n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("검색어 %d", i))
	}
	return out
}
