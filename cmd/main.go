package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"RevBridge/internal/appmanager"
	"RevBridge/internal/config"
	"RevBridge/internal/jobs"
	"RevBridge/internal/samplegen"
	"RevBridge/internal/store"
)

// InitDB loads DB config from env vars
func InitDB() (*sql.DB, error) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	connStr := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		user, pass, host, port, name,
	)
	return sql.Open("postgres", connStr)
}

func pgxURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
}

func main() {
	// Load .env for local dev
	_ = godotenv.Load(".env")

	var (
		configPath   = flag.String("config", "config.yaml", "path to the bridge configuration")
		servicesPath = flag.String("services", "services.yaml", "path to the service sequence")
		oneShot      = flag.Bool("run", false, "run the bridge once from the configured input and exit")
		inPath       = flag.String("in", "", "override input file path")
		samplePath   = flag.String("sample", "", "write a synthetic sample input to this path and exit")
		sampleSeed   = flag.Int64("seed", 42, "sample generator seed")
	)
	flag.Parse()

	if *samplePath != "" {
		opts := samplegen.DefaultOptions()
		opts.Seed = *sampleSeed
		if err := samplegen.Generate(*samplePath, opts); err != nil {
			log.Fatal("failed to generate sample data:", err)
		}
		log.Println("sample data written to", *samplePath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	if *inPath != "" {
		cfg.Files.PathIn = *inPath
	}
	appmanager.SetConfig(cfg)

	var st *store.Store
	if cfg.Database.Enabled {
		db, err := InitDB()
		if err != nil {
			log.Fatal("failed to connect to DB:", err)
		}
		if err := store.EnsureSchema(db, cfg.Database.Schema); err != nil {
			log.Fatal("failed to prepare DB schema:", err)
		}
		appmanager.SetDB(db)

		pool, err := pgxpool.New(context.Background(), pgxURL())
		if err != nil {
			log.Fatal("failed to create pgx pool:", err)
		}
		appmanager.SetPgxPool(pool)
		st = store.New(pool, cfg.Database.Schema)
	}

	if *oneShot {
		res, err := jobs.RefreshFromFile(context.Background(), cfg, st)
		if err != nil {
			log.Fatal("bridge run failed: ", err)
		}
		log.Printf("bridge run complete: %d flat rows, %d waterfall rows, %d warnings",
			len(res.Flat), len(res.Waterfall), len(res.Warnings))
		return
	}

	manager := appmanager.NewAppManager()

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(*servicesPath)
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}

	// Automatically register all services
	manager.AutoRegisterServices(servicesCfg)

	// Start all services
	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	// Stop all services
	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop:", err)
	}
}
