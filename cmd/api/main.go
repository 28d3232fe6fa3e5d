package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	_ "github.com/jhoicas/mesa-api/docs"
	"github.com/jhoicas/mesa-api/internal/application/auth"
	"github.com/jhoicas/mesa-api/internal/application/cart"
	"github.com/jhoicas/mesa-api/internal/application/guard"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/application/table"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
	"github.com/jhoicas/mesa-api/internal/domain/token"
	"github.com/jhoicas/mesa-api/internal/infrastructure/backend"
	"github.com/jhoicas/mesa-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/mesa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/mesa-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/mesa-api/internal/infrastructure/redis"
	"github.com/jhoicas/mesa-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/mesa-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/mesa-api/internal/interfaces/http"
	"github.com/jhoicas/mesa-api/pkg/config"
	"github.com/jhoicas/mesa-api/pkg/logger"
)

// purger stores que necesitan limpieza periódica de claves vencidas (sqlite, postgres).
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// @title                       Mesa API
// @version                     1.0
// @description                 BFF de pedidos en mesa con crédito Adecash
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token de sesión>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio para firmar los tokens de sesión")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Store clave-valor de sesión, carrito y comprobantes
	var (
		kv       repository.KVStore
		receipts repository.ReceiptRepository
		cleanup  = func() {}
	)
	switch cfg.Store.Driver {
	case "redis":
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		cleanup = func() { _ = client.Close() }
		kv = infraredis.NewKVStore(client, cfg.Redis.Prefix)
	case "sqlite":
		db, err := sqlite.OpenDB(cfg.SQLite.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("apertura de SQLite")
		}
		cleanup = func() { _ = db.Close() }
		store := sqlite.NewKVStore(db)
		go purgeLoop(ctx, store, cfg.Store.TTL, log.Component("sqlite"))
		kv = store
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		cleanup = pool.Close
		store := postgres.NewKVStore(pool)
		go purgeLoop(ctx, store, cfg.Store.TTL, log.Component("postgres"))
		kv = store
		receipts = postgres.NewReceiptRepository(pool)
	default:
		store := memory.NewKVStore()
		cleanup = store.Close
		kv = store
	}
	defer cleanup()
	if receipts == nil {
		receipts = storage.NewReceiptRepository(kv, cfg.Store.TTL)
	}

	codec := token.NewCodec(cfg.Token.CoreSecret, token.WithProviderSecret(cfg.Token.ProviderSecret))
	if codec.UsesDefaultSecret() {
		log.Warn().Msg("CORE_JWT_SECRET no definido: se usa el secreto por defecto, no apto para producción")
	}

	backendClient := backend.NewClient(cfg.Backend, log.Component("backend"))
	locks := guard.NewKeyedMutex()
	carts := storage.NewCartRepository(kv, cfg.Store.TTL)

	sessions := session.NewManager(
		storage.NewSessionRepository(kv, cfg.Store.TTL),
		codec, backendClient, locks, log.Component("session"),
	)
	cartSvc := cart.NewService(carts, sessions, backendClient, locks, log.Component("cart"))
	tableUC := table.NewUseCase(table.Deps{
		Sessions: sessions,
		Carts:    carts,
		Receipts: receipts,
		Backend:  backendClient,
		PDF:      infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		Locks:    locks,
		Log:      log.Component("table"),
	})
	authUC := auth.NewAuthUseCase(sessions, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs (documento generado con `swag init -g cmd/api/main.go`)
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Mesa API",
	}))

	// el intercambio de token pega al backend: se limita por IP
	authLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})
	app.Use("/auth", authLimiter)
	app.Use("/loading", authLimiter)
	app.Use("/api/auth", authLimiter)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Sessions:     sessions,
		CartSvc:      cartSvc,
		TableUC:      tableUC,
		JWTSecret:    cfg.JWT.Secret,
		AppName:      cfg.App.Name,
		BreakerState: backendClient.BreakerState,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// purgeLoop borra claves vencidas cada ttl (mínimo un minuto). Sin TTL no hay nada que purgar.
func purgeLoop(ctx context.Context, p purger, ttl time.Duration, log zerolog.Logger) {
	if ttl <= 0 {
		return
	}
	every := max(ttl, time.Minute)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("purga de claves vencidas")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("claves vencidas purgadas")
			}
		}
	}
}
