package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"rtigo/backend/internal/config"
	"rtigo/backend/internal/content"
	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/lifecycle"
	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: create-admin <name> <identity-number> [wallet], migrate, reconcile")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create-admin":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin create-admin <name> <identity-number> [wallet]")
			os.Exit(1)
		}
		wallet := ""
		if len(os.Args) > 4 {
			wallet = os.Args[4]
		}
		if err := createAdmin(cfg, os.Args[2], os.Args[3], wallet); err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
	case "migrate":
		if err := storage.MigrateFileStore(cfg.DataDir); err != nil {
			log.Fatalf("Error migrating file store: %v", err)
		}
		fmt.Printf("File store in %s migrated to schema version %d.\n", cfg.DataDir, storage.SchemaVersion)
	case "reconcile":
		if err := reconcile(cfg); err != nil {
			log.Fatalf("Error reconciling mirror: %v", err)
		}
	default:
		fmt.Printf("Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}

func createAdmin(cfg config.Config, name, identityNumber, wallet string) error {
	store, err := storage.OpenFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	signinKey, err := models.GenerateSigninKey()
	if err != nil {
		return err
	}
	user := &models.User{
		Name:           name,
		IdentityNumber: identityNumber,
		Role:           models.RoleAdmin,
		SigninKeyHash:  models.HashSigninKey(signinKey),
		WalletAddress:  wallet,
	}
	if err := store.CreateUser(user); err != nil {
		return err
	}
	fmt.Printf("Admin %s created with id %s.\n", name, user.ID)
	fmt.Printf("Sign-in key (shown once): %s\n", signinKey)
	return nil
}

// reconcile replays the ledger's event log into the mirror, repairing any
// requests that committed on chain but missed their mirror write.
func reconcile(cfg config.Config) error {
	if cfg.LedgerPrivateKey == "" || cfg.ContractAddress == "" {
		return fmt.Errorf("LEDGER_PRIVATE_KEY and CONTRACT_ADDRESS must be set")
	}
	store, err := storage.OpenFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.GatewayTimeout)
	defer cancel()
	gateway, err := ledger.NewEthereumGateway(ctx, cfg.EthRPCURL, cfg.ContractAddress, cfg.LedgerPrivateKey)
	if err != nil {
		return err
	}
	engine := lifecycle.NewEngine(store, content.NewMemoryStore(), gateway)
	rec := &lifecycle.Reconciler{Engine: engine, Reader: gateway}
	applied, err := rec.Replay(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Reconciliation complete: %d event(s) applied to the mirror.\n", applied)
	return nil
}
