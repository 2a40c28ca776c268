package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"foodhive/internal/api"
	"foodhive/internal/app"
	"foodhive/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Issuing a token needs nothing but the secret.
	if os.Args[1] == "token" {
		tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
		user := tokenCmd.String("user", "", "User id to put in the token subject")
		ttl := tokenCmd.Duration("ttl", 30*24*time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])
		if *user == "" {
			log.Fatal("-user is required")
		}
		token, err := api.IssueToken(cfg.JWTSecret, *user, *ttl)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer application.Close()

	switch os.Args[1] {
	case "summary":
		summaryCmd := flag.NewFlagSet("summary", flag.ExitOnError)
		user := summaryCmd.String("user", "", "User id")
		summaryCmd.Parse(os.Args[2:])
		if *user == "" {
			log.Fatal("-user is required")
		}
		if err := application.Summary(ctx, *user, os.Stdout); err != nil {
			log.Fatalf("Summary failed: %v", err)
		}
	case "expiry-check":
		sent, err := application.Jobs.ExpiryCheck(ctx)
		if err != nil {
			log.Fatalf("Expiry check failed: %v", err)
		}
		fmt.Printf("Sent %d expiry notification(s).\n", sent)
	case "import-products":
		importCmd := flag.NewFlagSet("import-products", flag.ExitOnError)
		user := importCmd.String("user", "", "User id")
		file := importCmd.String("file", "", "JSON file with an array of products")
		importCmd.Parse(os.Args[2:])
		if *user == "" || *file == "" {
			log.Fatal("-user and -file are required")
		}
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *file, err)
		}
		defer f.Close()
		n, err := application.ImportProducts(ctx, *user, f)
		if err != nil {
			log.Fatalf("Import failed after %d product(s): %v", n, err)
		}
		fmt.Printf("Imported %d product(s).\n", n)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.Metrics.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: foodhive <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  summary -user ID                    Print a user's pantry and shopping list")
	fmt.Println("  expiry-check                        Send today's expiry alerts")
	fmt.Println("  import-products -user ID -file F    Add products from a JSON file")
	fmt.Println("  metrics-cleanup [-days N]           Remove old API call records")
	fmt.Println("  token -user ID [-ttl D]             Issue an API token")
}
