package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"travel-chatbot-be/internal/bootstrap"
	"travel-chatbot-be/internal/config"
	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/database"
	"travel-chatbot-be/pkg/events"
	pkgNats "travel-chatbot-be/pkg/nats"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed data/places.yaml
var defaultPlaces []byte

type seedDocument struct {
	SourceId string                 `yaml:"source_id"`
	Title    string                 `yaml:"title"`
	Content  string                 `yaml:"content"`
	Metadata map[string]interface{} `yaml:"metadata"`
}

func (d seedDocument) message() *dto.PublishEmbedDocumentMessage {
	return &dto.PublishEmbedDocumentMessage{
		SourceId: d.SourceId,
		Title:    d.Title,
		Content:  d.Content,
		Metadata: d.Metadata,
	}
}

type seedFile struct {
	Documents []seedDocument `yaml:"documents"`
}

func (d *seedFile) validate() error {
	for i, doc := range d.Documents {
		if doc.SourceId == "" || doc.Title == "" || doc.Content == "" {
			return fmt.Errorf("document %d: source_id, title and content are required", i)
		}
	}
	return nil
}

func loadSeed(path string) (*seedFile, error) {
	data := defaultPlaces
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &file, file.validate()
}

func main() {
	file := flag.String("file", "", "YAML file of documents (defaults to the bundled places)")
	direct := flag.Bool("direct", false, "embed in this process instead of publishing to NATS")
	timeout := flag.Duration("timeout", 5*time.Minute, "how long to wait for direct ingestion")
	flag.Parse()

	cfg := config.Load()
	seed, err := loadSeed(*file)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if *direct {
		seedDirect(cfg, seed, *timeout)
		return
	}
	seedViaNats(cfg, seed)
}

// seedViaNats hands documents to a running server through DOCUMENT_UPSERTED events.
func seedViaNats(cfg *config.Config, seed *seedFile) {
	nc, err := pkgNats.Connect(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer nc.Close()

	publisher, err := pkgNats.NewPublisher(nc, logger.NewNopLogger())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	for _, doc := range seed.Documents {
		event := events.New(events.DocumentUpserted, map[string]interface{}{
			"source_id": doc.SourceId,
			"title":     doc.Title,
			"content":   doc.Content,
			"metadata":  doc.Metadata,
		})
		if err := publisher.Publish(ctx, event); err != nil {
			log.Fatalf("Error: failed to publish %s: %v", doc.SourceId, err)
		}
		log.Printf("Published %s", doc.SourceId)
	}
	log.Printf("✅ Published %d documents", len(seed.Documents))
}

func seedDirect(cfg *config.Config, seed *seedFile, timeout time.Duration) {
	var db *gorm.DB
	if cfg.Rag.VectorStore == "pgvector" {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			log.Fatalf("Error: Failed to connect to database: %v", err)
		}
	}
	cfg.App.NatsURL = ""
	cfg.Rag.TranscriptSinks = nil

	container, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, doc := range seed.Documents {
		if err := container.ConsumerService.Ingest(ctx, doc.message()); err != nil {
			log.Fatalf("Error: failed to ingest %s: %v", doc.SourceId, err)
		}
		log.Printf("Ingested %s", doc.SourceId)
	}

	n, err := container.VectorStore.Count(ctx)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Printf("✅ Corpus holds %d chunks", n)
}
