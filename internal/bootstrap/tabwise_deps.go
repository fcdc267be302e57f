package bootstrap

import (
	"context"
	"os"
	"strings"
	"time"

	"tabwise_server/adapter/out/host"
	"tabwise_server/adapter/out/mongodb"
	"tabwise_server/adapter/out/persistence"
	"tabwise_server/config"
	"tabwise_server/core/port/out"
	"tabwise_server/core/service/classification"
	"tabwise_server/core/service/organize"
	"tabwise_server/infra/database"
	"tabwise_server/pkg/cache"
	"tabwise_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies holds every wired adapter and service. A single instance is
// built at startup and shared by the API layer.
type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client
	Cache   *cache.RedisCache

	// Repositories
	CategoryRepo out.CategoryRepository
	PatternRepo  out.PatternRepository
	UndoRepo     out.UndoRepository
	ReportRepo   out.ReportRepository

	// Host bridge
	Bridge *host.BridgeAdapter

	// Services
	Coordinator *organize.Coordinator
	Learner     *classification.Learner
}

// NewDependencies wires the full dependency graph. Postgres and Redis are
// required; MongoDB only disables report archiving when absent.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the category adapter)
	// simple_protocol avoids prepared statement conflicts behind PgBouncer
	sqlxURL := cfg.DatabaseURL
	if strings.Contains(sqlxURL, "?") {
		sqlxURL += "&default_query_exec_mode=simple_protocol"
	} else {
		sqlxURL += "?default_query_exec_mode=simple_protocol"
	}
	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis (pattern store, undo state, rate limiting)
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Redis = redisClient
	cleanups = append(cleanups, func() { redisClient.Close() })
	deps.Cache = cache.NewRedisCache(redisClient)

	// MongoDB (organize report archive, optional)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed, reports disabled: %v", err)
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			reportAdapter := mongodb.NewReportAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := reportAdapter.EnsureIndexes(context.Background()); err != nil {
				logger.Warn("Failed to ensure report indexes: %v", err)
			}
			deps.ReportRepo = reportAdapter
		}
	}

	// Repositories
	deps.CategoryRepo = persistence.NewCategoryAdapter(sqlDB)
	deps.PatternRepo = persistence.NewPatternAdapter(deps.Cache)
	deps.UndoRepo = persistence.NewUndoAdapter(deps.Cache)

	// Host bridge
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "bridge").Logger()
	deps.Bridge = host.NewBridgeAdapter(cfg.BridgeURL, zlog)

	// Services
	deps.Coordinator = organize.NewCoordinator(
		deps.Bridge,
		deps.CategoryRepo,
		deps.PatternRepo,
		deps.UndoRepo,
		deps.ReportRepo,
	)
	deps.Learner = classification.NewLearner(deps.PatternRepo, deps.CategoryRepo)

	logger.Info("Dependencies initialized (reports=%v)", deps.ReportRepo != nil)
	return deps, cleanup, nil
}
