package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/pagerag/backend/controller"
	"github.com/pagerag/backend/services"
)

func main() {
	cfg, err := services.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if closeErr := chromaClient.Close(); closeErr != nil {
			log.Printf("Warning: Failed to close chroma client: %v", closeErr)
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.CollectionName)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaBaseURL, cfg.EmbeddingModel, cfg.EmbedBatchSize, services.DefaultRetryPolicy)
	store := services.NewChromaStore(collection)
	chunker := services.NewChunker(cfg.MaxChunkLen, cfg.MinTextLen)
	generator := services.NewGeminiGenerator(geminiClient, cfg.GenerationModel)

	indexingService := services.NewIndexingService(chunker, embedder, store, cfg.CollectionName)
	queryService := services.NewQueryService(embedder, store, generator, cfg.TopK, cfg.MaxContextLen)
	healthService := services.NewHealthService(embedder, store, cfg.GenerationModel)
	ragController := controller.NewRAGController(indexingService, queryService, healthService)

	// Optional drop-folder sync.
	if cfg.WatchDir != "" {
		watcher := services.NewWatcherService(indexingService, store)
		watchCtx := context.Background()
		go watcher.ScanAndIndexDirectory(watchCtx, cfg.WatchDir)
		go watcher.WatchDirectory(watchCtx, cfg.WatchDir)
	}

	router := gin.Default()

	// CORS middleware so browser extensions and pages can call the API.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "RAG Server",
			"version": "2.0.0",
			"providers": gin.H{
				"embedding":  cfg.EmbeddingModel,
				"generation": cfg.GenerationModel,
				"vector_db":  "Chroma (" + cfg.CollectionName + ")",
			},
		})
	})
	router.GET("/health", ragController.Health)
	router.POST("/index", ragController.IndexText)
	router.POST("/query", ragController.QueryRAG)

	log.Printf("RAG backend server starting on http://localhost:%s", cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST http://localhost:%s/index", cfg.Port)
	log.Printf("  POST http://localhost:%s/query", cfg.Port)
	log.Printf("  GET  http://localhost:%s/health", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// getOrCreateCollection ensures the configured collection exists.
func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "RAG backend collection"),
				chromago.NewStringAttribute("created_by", "rag_backend"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
