package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"travel-chatbot-be/internal/bootstrap"
	"travel-chatbot-be/internal/config"
	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/pkg/database"
	"travel-chatbot-be/pkg/rag/state"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func main() {
	session := flag.String("session", "", "session id (random when empty)")
	verbose := flag.Bool("v", false, "print retrieved documents")
	flag.Parse()

	cfg := config.Load()
	cfg.App.NatsURL = ""
	cfg.Rag.TranscriptSinks = []string{"file"}

	var db *gorm.DB
	if cfg.Rag.VectorStore == "pgvector" {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			log.Fatalf("Error: Failed to connect to database: %v", err)
		}
	}

	container, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := container.Start(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}

	sessionId := *session
	if sessionId == "" {
		sessionId = uuid.NewString()
	}
	color.Cyan("🧭 Travel chatbot REPL (session %s)", sessionId)
	color.HiBlack("Commands: /reset clears history, /quit exits\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.New(color.FgGreen, color.Bold).Sprint("you> "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/reset":
			if err := container.ChatbotService.ClearHistory(ctx, sessionId); err != nil {
				color.Red("Failed: %v", err)
			} else {
				color.Yellow("History cleared")
			}
			continue
		}

		res, err := container.ChatbotService.SendChat(ctx, &dto.SendChatRequest{
			SessionId: sessionId,
			Chat:      line,
		})
		if err != nil {
			color.Red("Failed: %v", err)
			if ctx.Err() != nil {
				return
			}
			continue
		}
		printTurn(res, *verbose)
	}
}

func printTurn(res *dto.SendChatResponse, verbose bool) {
	if res.SafetyViolation {
		color.Red("[guardrail] blocked (%s)", res.SafetyCategory)
	} else {
		color.HiBlack("[intent] %s  [query] %s", res.Intent, res.RefinedQuery)
		color.HiBlack("[docs] %d  [retries] %d  [grade] %s", len(res.Documents), res.RetryCount, gradeLabel(res.Grade))
	}
	if verbose {
		for i, doc := range res.Documents {
			color.Magenta("  %d. %s (%.3f)", i+1, doc.Title, doc.Score)
		}
	}
	fmt.Println(color.New(color.FgCyan).Sprint("bot> ") + res.Reply)
}

func gradeLabel(grade string) string {
	switch state.Grade(grade) {
	case state.GradeUseful:
		return color.GreenString(grade)
	case state.GradeNotUseful:
		return color.RedString(grade)
	case state.GradeNone:
		return color.YellowString("ungraded")
	}
	return grade
}
