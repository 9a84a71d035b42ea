package main

import (
	"context"
	"time"

	"github.com/applyflow/applyflow/internal/ai/embeddings"
	"github.com/applyflow/applyflow/internal/ai/profileparser"
	appcfg "github.com/applyflow/applyflow/internal/config"
	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pipeline/application/applicationapi"
	"github.com/applyflow/applyflow/pipeline/application/applicationinfra"
	"github.com/applyflow/applyflow/pipeline/apply/applyapi"
	"github.com/applyflow/applyflow/pipeline/apply/applyinfra"
	"github.com/applyflow/applyflow/pipeline/apply/applysrv"
	"github.com/applyflow/applyflow/pipeline/apply/worker"
	"github.com/applyflow/applyflow/pipeline/candidateauth"
	"github.com/applyflow/applyflow/pipeline/listing/listingapi"
	"github.com/applyflow/applyflow/pipeline/listing/listinginfra"
	"github.com/applyflow/applyflow/pipeline/listing/listingsrv"
	"github.com/applyflow/applyflow/pipeline/match/matchapi"
	"github.com/applyflow/applyflow/pipeline/match/matchinfra"
	"github.com/applyflow/applyflow/pipeline/match/matchsrv"
	"github.com/applyflow/applyflow/pipeline/notify"
	"github.com/applyflow/applyflow/pipeline/profile/profileapi"
	"github.com/applyflow/applyflow/pipeline/profile/profileinfra"
	"github.com/applyflow/applyflow/pipeline/profile/profilesrv"
	"github.com/applyflow/applyflow/pipeline/scheduler"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/fsx"
	"github.com/applyflow/applyflow/pkg/fsx/fsxs3"
	"github.com/applyflow/applyflow/pkg/logx"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config *appcfg.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	Tasks      *asyncx.Pool

	// Auth
	TokenService *candidateauth.TokenService

	// Services
	ProfileService  *profilesrv.Service
	ListingService  *listingsrv.Service
	MatchService    *matchsrv.Service
	ApplyService    *applysrv.Service
	ApplicationRepo application.Repository

	// Background
	WorkerPool *worker.Pool
	Scheduler  *scheduler.Scheduler

	// API Handlers
	ProfileHandlers     *profileapi.Handlers
	ListingHandlers     *listingapi.Handlers
	MatchHandlers       *matchapi.Handlers
	ApplyHandlers       *applyapi.Handlers
	ApplicationHandlers *applicationapi.Handlers
}

// NewContainer initializes every dependency in order: infrastructure,
// repositories, services, handlers.
func NewContainer() *Container {
	cfg, err := appcfg.Load()
	if err != nil {
		logx.Fatalf("Failed to load configuration: %v", err)
	}

	// PostgreSQL
	db, err := sqlx.Connect("postgres", cfg.DB.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v", err)
	}

	// S3 file system for stored résumés
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logx.Fatalf("Failed to load AWS configuration: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)
	fileSystem := fsxs3.NewS3FileSystem(s3Client, cfg.AWS.Bucket, "")

	// Background task pool for fire-and-forget work
	tasks := asyncx.NewPool(4, 256, 2*time.Minute)

	// Repositories
	profileRepo := profileinfra.NewPostgresProfileRepository(db)
	listingRepo := listinginfra.NewPostgresAdapter(db)
	matchRepo := matchinfra.NewPostgresAdapter(db)
	jobRepo := applyinfra.NewPostgresJobRepository(db)
	applicationRepo := applicationinfra.NewPostgresAdapter(db)

	// External collaborators
	extractor := profileinfra.NewOpenAIExtractor(profileparser.NewProfileParser(cfg.OpenAI.APIKey))
	embedder := embeddings.NewEmbeddingsGenerator(cfg.OpenAI.APIKey)
	applyClient := applyinfra.NewHTTPApplyClient(cfg.Queue.ApplyServiceURL, cfg.Queue.ApplyTimeout)
	notifier := notify.NewLogNotifier()

	// Queue plumbing
	jobQueue := applyinfra.NewRedisQueue(redisClient)
	rateLimiter := applyinfra.NewRedisRateLimiter(redisClient, cfg.Queue.RateLimitMax, cfg.Queue.RateLimitWindow)

	// Services. The apply service comes first so the review gate can hand
	// approved matches to it, and the match service doubles as the scoring
	// trigger the profile service fires after a résumé lands.
	applyService := applysrv.NewService(jobRepo, jobQueue, applyClient, rateLimiter, notifier, tasks, applysrv.Options{
		MaxAttempts:  cfg.Queue.MaxAttempts,
		BaseBackoff:  cfg.Queue.BaseBackoff,
		ApplyTimeout: cfg.Queue.ApplyTimeout,
	})
	matchService := matchsrv.NewService(matchRepo, profileRepo, listingRepo, applyService, notifier, tasks, cfg.Scoring.MinScore)
	profileService := profilesrv.NewService(profileRepo, extractor, fileSystem, matchService, tasks)
	listingService := listingsrv.NewService(listingRepo, embedder, tasks)

	tokenService := candidateauth.NewTokenService(cfg.Auth.JWTSecret)

	return &Container{
		Config:     cfg,
		DB:         db,
		Redis:      redisClient,
		FileSystem: fileSystem,
		Tasks:      tasks,

		TokenService: tokenService,

		ProfileService:  profileService,
		ListingService:  listingService,
		MatchService:    matchService,
		ApplyService:    applyService,
		ApplicationRepo: applicationRepo,

		WorkerPool: worker.NewPool(applyService, jobQueue, cfg.Queue.Workers, cfg.Queue.StaleAfter),
		Scheduler:  scheduler.New(matchService, cfg.Scheduler.ScoringSpec),

		ProfileHandlers:     profileapi.NewHandlers(profileService),
		ListingHandlers:     listingapi.NewHandlers(listingService),
		MatchHandlers:       matchapi.NewHandlers(matchService),
		ApplyHandlers:       applyapi.NewHandlers(applyService),
		ApplicationHandlers: applicationapi.NewHandlers(applicationRepo),
	}
}
