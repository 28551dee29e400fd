package main

import (
	"log"

	"travel-chatbot-be/internal/config"
	"travel-chatbot-be/internal/model"
	"travel-chatbot-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed to execute setup SQL: %v", err)
		}
	}

	// 4. AutoMigrate
	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.Document{},
		&model.ChatTranscript{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Indexes GORM cannot express
	log.Println("Step 3: Creating vector index...")
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_documents_embedding_hnsw
		 ON documents USING hnsw (embedding_value vector_cosine_ops)
		 WHERE deleted_at IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_source_chunk
		 ON documents (source_id, chunk_index)
		 WHERE deleted_at IS NULL;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
