// CLI tool to store a baseline for a session id in the postgres store, so a
// browser can be pointed at prepared data by setting the session cookie.
// Usage: go run ./cmd/seed-baseline [-session <id>]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/omarshanyour/nutrimind-backend/internal/kv"
	"github.com/omarshanyour/nutrimind-backend/internal/tracker"
)

func main() {
	session := flag.String("session", "", "existing session id to overwrite (a new one is generated when empty)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file, using environment only")
	}

	ctx := context.Background()
	pool, err := kv.NewPool(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	owner := *session
	if owner == "" {
		owner = uuid.New().String()
	}

	b := readBaseline(bufio.NewReader(os.Stdin))

	svc := tracker.NewService(kv.NewPostgres(pool), nil)
	saved, err := svc.SaveBaseline(ctx, owner, b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving baseline: %v\n", err)
		os.Exit(1)
	}

	t := saved.Targets()
	fmt.Printf("\nBaseline saved!\n")
	fmt.Printf("  Session:   %s\n", owner)
	fmt.Printf("  Calories:  %d kcal/day\n", t.CalorieTarget)
	fmt.Printf("  Protein:   %d-%d g/day\n", t.ProteinLow, t.ProteinHigh)
	fmt.Printf("  Hydration: %d oz/day\n", t.HydrationTargetOz)
}

// readBaseline prompts for the fields the targets depend on plus a few
// profile basics. Blank or non-numeric numbers are stored as 0.
func readBaseline(r *bufio.Reader) tracker.Baseline {
	ask := func(label string) string {
		fmt.Print(label + ": ")
		line, _ := r.ReadString('\n')
		return strings.TrimSpace(line)
	}
	askNum := func(label string) float64 {
		v, err := strconv.ParseFloat(ask(label), 64)
		if err != nil {
			return 0
		}
		return v
	}

	return tracker.Baseline{
		Name:                ask("Name"),
		Sport:               ask("Sport"),
		MainGoal:            ask("Main goal"),
		BodyweightLbs:       askNum("Bodyweight (lb)"),
		HeightCM:            askNum("Height (cm)"),
		TrainingDaysPerWeek: askNum("Training days per week"),
	}
}
