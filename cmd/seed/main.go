package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"hotelms/internal/cache"
	"hotelms/internal/config"
	"hotelms/internal/db"
	"hotelms/internal/logger"
	"hotelms/internal/repository"
	"hotelms/internal/service"
)

func main() {
	file := flag.String("file", "", "path to a catalog JSON file")
	url := flag.String("url", "", "URL of a catalog JSON document")
	adminEmail := flag.String("admin-email", "", "create this admin account if it does not exist")
	adminPassword := flag.String("admin-password", "", "password for -admin-email")
	flag.Parse()

	if err := run(*file, *url, *adminEmail, *adminPassword); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(file, url, adminEmail, adminPassword string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	catalog, err := loadCatalog(file, url)
	if err != nil {
		return err
	}
	if adminEmail != "" {
		catalog.Admin = &service.CatalogAdmin{Email: adminEmail, Password: adminPassword, Name: "Administrator"}
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	log.Info("connected to database")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	catalogService := service.NewCatalogService(
		repository.NewRoomTypeRepository(gormDB),
		repository.NewRoomRepository(gormDB),
		repository.NewUserRepository(gormDB),
		cacheClient,
	)

	result, err := catalogService.Seed(context.Background(), catalog)
	if err != nil {
		return err
	}

	log.Info("seed completed",
		"room_types_created", result.RoomTypesCreated,
		"room_types_updated", result.RoomTypesUpdated,
		"rooms_created", result.RoomsCreated,
		"rooms_skipped", result.RoomsSkipped,
		"admin_created", result.AdminCreated,
	)
	return nil
}

func loadCatalog(file, url string) (*service.Catalog, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return service.ParseCatalog(data)
	case url != "":
		data, err := fetchCatalog(url)
		if err != nil {
			return nil, err
		}
		return service.ParseCatalog(data)
	default:
		return service.DefaultCatalog()
	}
}

// fetchCatalog downloads a catalog document.
func fetchCatalog(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog URL returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
