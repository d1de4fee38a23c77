package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rtigo/backend/internal/api/handler"
	"rtigo/backend/internal/complaint"
	"rtigo/backend/internal/config"
	"rtigo/backend/internal/content"
	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/lifecycle"
	"rtigo/backend/internal/storage"
)

func setupStorage(cfg config.Config) storage.Storage {
	switch cfg.StoreBackend {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}
		svc := storage.NewStorageService(db)
		// Міграції (Створення таблиць)
		if err := svc.AutoMigrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("PostgreSQL mirror store ready, migrations complete.")
		return svc
	case "file":
		store, err := storage.OpenFileStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open file store in %s: %v", cfg.DataDir, err)
		}
		log.Printf("File mirror store ready in %s.", cfg.DataDir)
		return store
	default:
		log.Fatalf("Unknown STORE_BACKEND %q", cfg.StoreBackend)
		return nil
	}
}

func setupContent(cfg config.Config) content.Store {
	switch cfg.ContentBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		log.Println("Redis content store ready.")
		return content.NewRedisStore(rdb)
	case "ipfs":
		log.Printf("IPFS content store at %s.", cfg.IPFSAddr)
		return content.NewIPFSStore(cfg.IPFSAddr)
	default:
		log.Fatalf("Unknown CONTENT_BACKEND %q", cfg.ContentBackend)
		return nil
	}
}

func main() {
	log.Println("Starting RTI backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET не встановлено!")
	}
	if cfg.LedgerPrivateKey == "" || cfg.ContractAddress == "" {
		log.Fatal("LEDGER_PRIVATE_KEY і CONTRACT_ADDRESS мають бути встановлені!")
	}

	// 1. Ініціалізація залежностей
	store := setupStorage(cfg)
	blobs := setupContent(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), config.GatewayTimeout)
	gateway, err := ledger.NewEthereumGateway(ctx, cfg.EthRPCURL, cfg.ContractAddress, cfg.LedgerPrivateKey)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect ledger gateway: %v", err)
	}
	log.Printf("Ledger gateway ready at %s (contract %s).", cfg.EthRPCURL, cfg.ContractAddress)

	// 2. Сервіси ядра
	engine := lifecycle.NewEngine(store, blobs, gateway)
	complaints := complaint.NewService(store, blobs)

	// 3. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(store, engine, complaints, blobs, []byte(cfg.JWTSecret))
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("RTI backend listening on %s", cfg.HTTPAddr)
	log.Fatal(server.ListenAndServe())
}
