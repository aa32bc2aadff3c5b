package main

import (
	"fmt"
	"log"
	"os"

	v1 "go_domains/api/v1"
	"go_domains/internal/auth"
	"go_domains/internal/cache"
	"go_domains/internal/config"
	"go_domains/internal/db"
	"go_domains/internal/provider"
	"go_domains/internal/provider/cloudflare"
	"go_domains/internal/provider/vercel"
	"go_domains/internal/tenantdomain"
	"go_domains/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Println("✓ Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.GetDB()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
			os.Exit(1)
		}
		log.Println("✓ Database migrated")
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	// 4. Initialize JWT
	auth.InitJWT(cfg.JWT.Secret)

	// 5. Build the domain provider
	p, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to build provider: %v", err)
		os.Exit(1)
	}
	log.Printf("✓ Domain provider: %s", p.Name())

	service := tenantdomain.NewService(db.GetDB(), cache.Client, p, cfg.Domain.BaseDomain)

	// 6. Initialize Socket.IO server
	if err := ws.InitServer(); err != nil {
		log.Fatalf("Failed to initialize WebSocket server: %v", err)
		os.Exit(1)
	}

	// 7. Start the verification worker
	worker := tenantdomain.NewWorker(service, logrus.WithField("component", "verify-worker"), tenantdomain.WorkerConfig{
		Enabled:     cfg.VerifyWorker.Enabled,
		IntervalSec: cfg.VerifyWorker.IntervalSec,
		BatchSize:   cfg.VerifyWorker.BatchSize,
	})
	worker.Start()
	defer worker.Stop()

	// 8. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, db.GetDB(), cfg, service)

	// Socket.IO endpoint (JWT checked during handshake)
	wsHandler := ws.WrapWithAuth(ws.Server)
	r.GET("/socket.io/*any", gin.WrapH(wsHandler))
	r.POST("/socket.io/*any", gin.WrapH(wsHandler))

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// buildProvider constructs the configured domain provider
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Domain.Provider {
	case config.ProviderCloudflare:
		return cloudflare.New(cloudflare.Config{
			APIToken:    cfg.Cloudflare.APIToken,
			ZoneID:      cfg.Cloudflare.ZoneID,
			BaseDomain:  cfg.Domain.BaseDomain,
			EdgeIP:      cfg.Cloudflare.EdgeIP,
			CNAMETarget: cfg.Cloudflare.CNAMETarget,
		}), nil
	case config.ProviderVercel:
		return vercel.New(vercel.Config{
			Token:      cfg.Vercel.Token,
			ProjectID:  cfg.Vercel.ProjectID,
			TeamID:     cfg.Vercel.TeamID,
			BaseDomain: cfg.Domain.BaseDomain,
		}), nil
	default:
		return nil, fmt.Errorf("unknown DOMAIN_PROVIDER: %s", cfg.Domain.Provider)
	}
}
