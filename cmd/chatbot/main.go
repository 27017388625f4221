package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/config"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/dispatch"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/knowledge"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/models"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/orchestrate"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/portal"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/session"
)

func main() {
	role := flag.String("role", "student", "portal role to chat as (admin, mentor, student)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx := context.Background()

	model, err := models.NewLLMProvider(ctx, cfg.Provider, cfg.Model)
	if err != nil {
		logger.Error("provider init failed", slog.Any("error", err))
		os.Exit(1)
	}

	fixtures := demoFixtures()
	services := fixtures.Services()

	if searcher := buildSearcher(ctx, cfg, fixtures, logger); searcher != nil {
		services.Knowledge = searcher
	}

	toolset := portal.NewToolset(services, portal.StaticEnumSource{})
	registry, err := capability.New(toolset.Bindings)
	if err != nil {
		logger.Error("registry init failed", slog.Any("error", err))
		os.Exit(1)
	}

	orchestrator, err := orchestrate.New(orchestrate.Options{
		Model:          model,
		Registry:       registry,
		Dispatcher:     dispatch.New(toolset.Handlers).WithParallelism(cfg.ToolParallel),
		MaxIterations:  cfg.MaxIterations,
		AllowedDomains: cfg.AllowedDomains,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("orchestrator init failed", slog.Any("error", err))
		os.Exit(1)
	}

	history := newHistoryStore(ctx, cfg, logger)
	sessionID := uuid.NewString()
	userCtx, userRole := demoUser(*role)

	fmt.Printf("Portal assistant ready (role %s). Type a question, or 'exit'.\n", userRole)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		prior, err := history.History(ctx, sessionID)
		if err != nil {
			logger.Warn("history load failed", slog.Any("error", err))
		}

		reqCtx := portal.WithRequester(ctx, userCtx.UserID)
		answer, err := orchestrator.Ask(reqCtx, orchestrate.AskRequest{
			UserContext: userCtx,
			History:     prior,
			Question:    question,
			Role:        userRole,
		})
		switch {
		case err == orchestrate.ErrNoAnswer:
			fmt.Println("Sorry, I could not find an answer to that. Please try rephrasing.")
			continue
		case err != nil:
			fmt.Println("The assistant is unavailable right now. Please try again later.")
			logger.Error("ask failed", slog.Any("error", err))
			continue
		}

		fmt.Println(answer)
		if err := history.Append(ctx, sessionID,
			chat.HistoryEntry{Role: "user", Content: question},
			chat.HistoryEntry{Role: "model", Content: answer},
		); err != nil {
			logger.Warn("history append failed", slog.Any("error", err))
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newHistoryStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) session.Store {
	if cfg.RedisAddr != "" {
		store, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.HistoryLimit, cfg.SessionTTL)
		if err == nil {
			return store
		}
		logger.Warn("redis unavailable, using in-memory history", slog.Any("error", err))
	}
	return session.NewInMemoryStore(cfg.HistoryLimit)
}

// buildSearcher wires the semantic search collaborator over whichever vector
// store the environment provides, seeded with the demo handbook snippets.
func buildSearcher(ctx context.Context, cfg *config.Config, fixtures *portal.Fixtures, logger *slog.Logger) portal.KnowledgeSearcher {
	embedder, err := models.NewEmbeddingProvider(ctx, cfg.EmbedProvider, cfg.Model)
	if err != nil {
		logger.Warn("no embedding provider, keyword search only", slog.Any("error", err))
		return nil
	}

	var store knowledge.VectorStore
	switch {
	case cfg.PostgresDSN != "":
		pg, err := knowledge.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Warn("postgres unavailable, using in-memory snippets", slog.Any("error", err))
			store = knowledge.NewInMemoryStore()
		} else {
			store = pg
		}
	case cfg.MongoURI != "":
		mg, err := knowledge.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, "knowledge_snippets")
		if err != nil {
			logger.Warn("mongo unavailable, using in-memory snippets", slog.Any("error", err))
			store = knowledge.NewInMemoryStore()
		} else {
			store = mg
		}
	default:
		store = knowledge.NewInMemoryStore()
	}

	searcher := knowledge.NewSearcher(embedder, store)
	for _, hit := range fixtures.Hits {
		if err := searcher.Index(ctx, hit.Source, hit.Content); err != nil {
			logger.Warn("snippet index failed", slog.String("source", hit.Source), slog.Any("error", err))
		}
	}
	return &knowledge.PortalSearcher{Searcher: searcher}
}

func demoUser(role string) (chat.UserContext, capability.Role) {
	switch role {
	case "admin":
		return chat.UserContext{
			UserID: "u-admin-1", FirstName: "Dana", LastName: "Reyes",
			Email: "dana.reyes@mmdc.mcl.edu.ph", Role: "admin",
			Staff: &chat.StaffContext{EmployeeNumber: "E-1001", Department: "Registrar"},
		}, capability.RoleAdmin
	case "mentor":
		return chat.UserContext{
			UserID: "u-mentor-1", FirstName: "Miguel", LastName: "Santos",
			Email: "miguel.santos@mmdc.mcl.edu.ph", Role: "mentor",
			Staff: &chat.StaffContext{EmployeeNumber: "E-2044", Department: "Information Technology"},
		}, capability.RoleMentor
	default:
		return chat.UserContext{
			UserID: "u-student-1", FirstName: "Aliyah", LastName: "Cruz",
			Email: "aliyah.cruz@mmdc.mcl.edu.ph", Role: "student",
			Student: &chat.StudentContext{StudentNumber: "2023-10012", Program: "BS Information Technology", YearLevel: 2},
		}, capability.RoleStudent
	}
}

func demoFixtures() *portal.Fixtures {
	now := time.Now()
	return &portal.Fixtures{
		Users: []portal.User{
			{ID: "u-admin-1", FirstName: "Dana", LastName: "Reyes", Email: "dana.reyes@mmdc.mcl.edu.ph", Role: "admin"},
			{ID: "u-mentor-1", FirstName: "Miguel", LastName: "Santos", Email: "miguel.santos@mmdc.mcl.edu.ph", Role: "mentor"},
			{ID: "u-student-1", FirstName: "Aliyah", LastName: "Cruz", Email: "aliyah.cruz@mmdc.mcl.edu.ph", Role: "student"},
		},
		Courses: []portal.Course{
			{Code: "MO-IT101", Title: "Introduction to Computing", Description: "Foundations of computing and the IT profession.", Units: 3},
			{Code: "MO-IT151", Title: "Web Systems and Technologies", Description: "Client and server side web development.", Units: 3},
			{Code: "MO-GE103", Title: "Purposive Communication", Description: "Academic and professional communication.", Units: 3},
		},
		Periods: []portal.EnrollmentPeriod{
			{ID: "p-2025-t3", Term: "Term 3", SchoolYear: "2025-2026", Status: portal.EnrollmentActive,
				StartsAt: now.AddDate(0, -1, 0), EndsAt: now.AddDate(0, 2, 0)},
			{ID: "p-2025-t2", Term: "Term 2", SchoolYear: "2025-2026", Status: portal.EnrollmentClosed,
				StartsAt: now.AddDate(0, -5, 0), EndsAt: now.AddDate(0, -2, 0)},
		},
		Enrollments: map[string][]portal.EnrolledCourse{
			"u-student-1": {
				{CourseCode: "MO-IT101", Title: "Introduction to Computing", Section: "A1101", Mentor: "Miguel Santos", Status: "enrolled"},
				{CourseCode: "MO-GE103", Title: "Purposive Communication", Section: "A1102", Mentor: "Lea Villanueva", Status: "enrolled"},
			},
		},
		Modules: map[string][]portal.Module{
			"MO-IT101": {
				{ID: "m-101-1", CourseCode: "MO-IT101", Title: "Week 1: History of Computing", Position: 1},
				{ID: "m-101-2", CourseCode: "MO-IT101", Title: "Week 2: Number Systems", Position: 2},
			},
		},
		Contents: map[string][]portal.ModuleContent{
			"m-101-1": {
				{ID: "c-1", ModuleID: "m-101-1", Title: "Lecture video", Type: portal.ContentVideo, Progress: portal.ProgressCompleted},
				{ID: "c-2", ModuleID: "m-101-1", Title: "Reflection essay", Type: portal.ContentAssignment, Progress: portal.ProgressInProgress},
			},
		},
		Invoices: map[string][]portal.InvoiceDetail{
			"u-student-1": {
				{
					Invoice: portal.Invoice{ID: "inv-7001", InvoiceNo: 7001, Status: portal.BillUnpaid,
						Scheme: portal.SchemeInstallment1, Amount: 24500, Balance: 12250, DueAt: now.AddDate(0, 0, 14)},
					Items:    []portal.InvoiceItem{{Name: "Tuition (Term 3)", Amount: 22000}, {Name: "Miscellaneous", Amount: 2500}},
					Payments: []portal.Payment{{ID: "pay-1", Amount: 12250, PaidAt: now.AddDate(0, -1, 3), Method: "gcash"}},
				},
			},
		},
		Hits: []portal.SearchHit{
			{Source: "student-handbook", Content: "Students may shift programs after completing at least one term with a passing standing. Shifting requests go through the registrar.", Score: 1},
			{Source: "student-handbook", Content: "Tuition can be paid in full or in two installments. Installment due dates fall on the fourth and tenth week of the term.", Score: 1},
			{Source: "lms-guide", Content: "Module contents unlock sequentially. An assignment marked in progress can be resubmitted until its due date.", Score: 1},
		},
	}
}
