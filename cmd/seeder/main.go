package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/database"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/scoring"
)

// Simplified config loading for the script
func loadConfig() (dbName, migrationsDir string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "scorebook-seed.db"
	}
	migrationsDir = os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	return dbName, migrationsDir
}

func main() {
	log.Info("Starting database seeder...")
	dbName, migrationsDir := loadConfig()

	db, teardown, err := database.InitDB(dbName, "", "", migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	defer db.Close()

	matchStore := match.New(db)
	scoringStore := scoring.New(db, scoring.Rules{})

	oversLimit := 20
	m, err := matchStore.CreateMatch(match.CreateMatchParams{
		LeagueID:   "league-demo",
		HomeTeamID: "team-lions",
		AwayTeamID: "team-tigers",
		VenueID:    "venue-oval",
		StartTime:  time.Now(),
		Format:     cricket.FormatT20,
		OversLimit: &oversLimit,
	})
	if err != nil {
		log.Fatalf("Failed to create demo match: %s", err)
	}
	log.Info("Created demo match", "matchID", m.ID)

	if _, err := matchStore.ConductToss(m.ID, "team-lions", cricket.DecisionBat); err != nil {
		log.Fatalf("Failed to conduct toss: %s", err)
	}
	if _, err := matchStore.StartMatch(m.ID); err != nil {
		log.Fatalf("Failed to start match: %s", err)
	}

	innings, err := scoringStore.StartInnings(m.ID, "team-lions", "team-tigers", nil)
	if err != nil {
		log.Fatalf("Failed to start innings: %s", err)
	}
	log.Info("Started first innings", "inningsID", innings.ID)

	batsmen := []string{"lions-1", "lions-2"}
	bowlers := []string{"tigers-1", "tigers-2", "tigers-3"}

	const oversToSeed = 4
	for over := 0; over < oversToSeed; over++ {
		bowler := bowlers[over%len(bowlers)]
		if _, err := scoringStore.StartOver(innings.ID, bowler); err != nil {
			log.Fatalf("Failed to start over %d: %s", over+1, err)
		}

		legal := 0
		for legal < m.BallsPerOver {
			ball := scoring.BallInput{
				StrikerID:    batsmen[0],
				NonStrikerID: batsmen[1],
				BowlerID:     bowler,
			}

			switch roll := rand.Intn(10); {
			case roll == 0:
				ball.Extras.Wide = 1
			case roll == 1:
				ball.RunsOffBat = 4
				ball.Boundary = cricket.BoundaryFour
			case roll == 2:
				ball.RunsOffBat = 6
				ball.Boundary = cricket.BoundarySix
			default:
				ball.RunsOffBat = rand.Intn(3)
			}

			result, err := scoringStore.RecordBall(innings.ID, ball, nil)
			if err != nil {
				log.Fatalf("Failed to record ball: %s", err)
			}
			if result.Ball.Extras.Legal() {
				legal++
				// Odd runs swap the strike.
				if result.Ball.RunsOffBat%2 == 1 {
					batsmen[0], batsmen[1] = batsmen[1], batsmen[0]
				}
			}
		}
		// New over, batsmen change ends.
		batsmen[0], batsmen[1] = batsmen[1], batsmen[0]
	}

	final, err := scoringStore.GetInnings(innings.ID)
	if err != nil {
		log.Fatalf("Failed to load innings: %s", err)
	}

	fmt.Printf("Seeded match %s: %d/%d after %.1f overs\n", m.ID, final.TotalRuns, final.TotalWickets, final.TotalOvers)
	log.Info("Seeding complete", "matchID", m.ID, "runs", final.TotalRuns)
}
