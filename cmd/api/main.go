package main

import (
	"context"
	"log"

	"github.com/gezi-blog/backend/config"
	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/bootstrap"
	postsrepo "github.com/gezi-blog/backend/internal/posts/repository"
	"github.com/gezi-blog/backend/internal/posts/reconcile"
	uploadssvc "github.com/gezi-blog/backend/internal/uploads/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	authClient, fsClient, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer fsClient.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	presigner, err := uploadssvc.NewR2Presigner(ctx, &cfg.R2)
	if err != nil {
		log.Fatalf("Failed to initialize R2 presigner: %v", err)
	}

	verifier := auth.NewVerifier(authClient)
	evaluator := access.NewEvaluator(cfg.App.AdminEmails)

	scheduler := reconcile.NewScheduler(postsrepo.NewPostRepository(fsClient))
	scheduler.Start()
	defer scheduler.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:         "gezi-blog-backend",
		Version:             cfg.App.Version,
		AllowedOrigins:      cfg.Server.AllowedOrigins,
		Firestore:           fsClient,
		Redis:               rdb,
		Verifier:            verifier,
		Accounts:            verifier,
		Evaluator:           evaluator,
		Presigner:           presigner,
		UploadPublicBaseURL: cfg.R2.PublicBaseURL,
	})

	log.Printf("Starting %s on port %s", "gezi-blog-backend", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
