// Command inspect performs a one-shot fetch and index build against the
// configured datastore and prints snapshot statistics. Useful for checking
// upstream data quality without starting the server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopfinder/shopfinder-server/internal/directory"
	"github.com/shopfinder/shopfinder-server/internal/postgrest"
)

func main() {
	baseURL := os.Getenv("DATASTORE_URL")
	if baseURL == "" {
		log.Fatal("DATASTORE_URL is required")
	}
	apiKey := os.Getenv("DATASTORE_API_KEY")

	table := os.Getenv("DATASTORE_TABLE")
	if table == "" {
		table = "listings"
	}

	pageSize := 1000
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client := postgrest.New(baseURL, apiKey, 30*time.Second, logger)
	source := directory.NewRemoteSource(client, table, pageSize, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	listings, err := source.FetchAll(ctx)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	fetchElapsed := time.Since(start)

	start = time.Now()
	snap := directory.BuildSnapshot(listings, directory.DefaultBuildOptions())
	buildElapsed := time.Since(start)

	fmt.Println("=== Snapshot Inspection ===")
	fmt.Println()
	fmt.Printf("Build ID:        %s\n", snap.BuildID)
	fmt.Printf("Fetched:         %d listings in %s\n", snap.Total, fetchElapsed.Round(time.Millisecond))
	fmt.Printf("Indexed:         %s\n", buildElapsed.Round(time.Microsecond))
	fmt.Println()
	fmt.Printf("Cities:          %d\n", len(snap.Cities))
	fmt.Printf("States:          %d\n", len(snap.States))
	fmt.Printf("Counties:        %d\n", len(snap.Counties))
	fmt.Printf("Tags:            %d\n", len(snap.TagIDs))
	fmt.Printf("Slug entries:    %d\n", len(snap.BySlug))
	fmt.Println()

	// Records an operator should look at upstream.
	var noSlug, noLocation, noCoords, shadowed int
	for i := range snap.Listings {
		l := &snap.Listings[i]
		slugValue := l.EffectiveSlug()
		if slugValue == "" {
			noSlug++
		} else if snap.BySlug[slugValue].ID != l.ID {
			shadowed++
		}
		if l.City == "" || l.State == "" {
			noLocation++
		}
		if _, ok := l.Point(); !ok {
			noCoords++
		}
	}
	fmt.Printf("Unaddressable (no slug):        %d\n", noSlug)
	fmt.Printf("Shadowed by slug collision:     %d\n", shadowed)
	fmt.Printf("Missing city or state:          %d\n", noLocation)
	fmt.Printf("Missing usable coordinates:     %d\n", noCoords)
	fmt.Println()

	fmt.Println("Top rated:")
	for i, l := range snap.Popular {
		if i >= 10 {
			break
		}
		fmt.Printf("  %.1f (%4d reviews)  %s — %s, %s\n", l.Rating, l.ReviewCount, l.Name, l.City, l.State)
	}
}
