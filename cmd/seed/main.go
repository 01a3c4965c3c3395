package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kashan16/fatima-botique-ecom-sub001/config"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/catalogimport"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
)

func main() {
	filePath := flag.String("file", "", "path to the catalog workbook (.xlsx)")
	assumeYes := flag.Bool("yes", false, "skip the confirmation prompt")
	dryRun := flag.Bool("dry-run", false, "parse the workbook and print counts without writing")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/seed -file catalog.xlsx [-yes] [-dry-run]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		Service:     "catalog-seed",
		EnableColor: true,
	})

	fmt.Printf("Reading workbook: %s\n", *filePath)
	catalog, err := catalogimport.ReadFile(*filePath)
	if err != nil {
		log.Fatal("Failed to read workbook: ", err)
	}

	fmt.Printf("Categories: %d, products: %d, variants: %d, images: %d\n",
		len(catalog.Categories), len(catalog.Products), len(catalog.Variants), len(catalog.Images))
	if *dryRun {
		fmt.Println("Dry run, nothing written.")
		return
	}

	if !*assumeYes && !confirm("Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	summary, err := catalogimport.NewImporter(db.GetDB()).Import(context.Background(), catalog)
	if err != nil {
		log.Fatal("Import failed: ", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Categories upserted: %d\n", summary.Categories)
	fmt.Printf("Products upserted:   %d\n", summary.Products)
	fmt.Printf("Variants upserted:   %d\n", summary.Variants)
	fmt.Printf("Images added:        %d\n", summary.Images)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
