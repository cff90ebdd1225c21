package bootstrap

import (
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gezi-blog/backend/internal/access"
	httpapi "github.com/gezi-blog/backend/internal/api/http"
	"github.com/gezi-blog/backend/internal/auth/middleware"
	"github.com/gezi-blog/backend/internal/ratelimit"
	"github.com/gezi-blog/backend/internal/site"

	postscache "github.com/gezi-blog/backend/internal/posts/cache"
	postshttp "github.com/gezi-blog/backend/internal/posts/http"
	postsrepo "github.com/gezi-blog/backend/internal/posts/repository"
	postssvc "github.com/gezi-blog/backend/internal/posts/service"

	usershttp "github.com/gezi-blog/backend/internal/users/http"
	usersrepo "github.com/gezi-blog/backend/internal/users/repository"
	userssvc "github.com/gezi-blog/backend/internal/users/service"

	uploadshttp "github.com/gezi-blog/backend/internal/uploads/http"
	uploadssvc "github.com/gezi-blog/backend/internal/uploads/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	Firestore *firestore.Client
	Redis     *redis.Client

	Verifier  middleware.TokenVerifier
	Accounts  userssvc.AccountDeleter
	Evaluator *access.Evaluator
	Presigner uploadssvc.Presigner

	UploadPublicBaseURL string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Firestore, dep.Redis)
	healthHandler.RegisterRoutes(r)

	userRepo := usersrepo.NewUserRepository(dep.Firestore)
	whitelistRepo := usersrepo.NewWhitelistRepository(dep.Firestore)
	postRepo := postsrepo.NewPostRepository(dep.Firestore)
	feedCache := postscache.NewFeedCache(dep.Redis)
	siteRepo := site.NewFirestoreModeStore(dep.Firestore)

	userService := userssvc.NewUserService(dep.Evaluator, userRepo, whitelistRepo, dep.Accounts)
	postService := postssvc.NewPostService(dep.Evaluator, postRepo, userRepo, feedCache)
	uploadService := uploadssvc.NewUploadService(dep.Evaluator, userRepo, dep.Presigner, dep.UploadPublicBaseURL)
	siteService := site.NewService(dep.Evaluator, siteRepo)

	api := r.Group("/api/v1")

	// Reads go through optional auth: anonymous visitors see public posts,
	// signed-in users see what their role allows.
	public := api.Group("")
	public.Use(middleware.OptionalAuth(dep.Verifier))
	postshttp.New(postService).RegisterPublic(public)
	site.RegisterPublic(public, siteService)

	// Everything else requires a valid ID token.
	authed := api.Group("")
	authed.Use(middleware.RequireAuth(dep.Verifier))
	postshttp.New(postService).Register(authed)
	usershttp.New(userService).Register(authed)
	site.Register(authed, siteService)

	uploads := authed.Group("")
	uploads.Use(ratelimit.PerClient(1, 10))
	uploadshttp.NewHandler(uploadService).Register(uploads)

	return r
}
