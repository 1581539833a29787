package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"buslane/internal/seats"
	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/internal/trips"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db          *database.DB
	tripService trips.Service
	seatService seats.Service
}

func main() {
	fmt.Println("🌱 Starting Buslane Database Seeder...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	tripService := trips.NewService(trips.NewRepository(db.GetPostgreSQL()))
	seatService := seats.NewService(seats.NewRepository(db.GetPostgreSQL()),
		cfg.Booking.HoldDuration, cfg.Booking.MaxHoldsPerSession)
	seatService.SetTripService(tripService)

	seeder := &Seeder{db: db, tripService: tripService, seatService: seatService}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"seats",
		"trips",
	}

	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll creates demo trips and generates their seat layouts through the
// real services so the data matches what the API produces
func (s *Seeder) SeedAll() error {
	ctx := context.Background()
	departBase := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	demoTrips := []struct {
		req         trips.CreateTripRequest
		rows        int
		seatsPerRow int
	}{
		{
			req: trips.CreateTripRequest{
				Title:     "Jakarta - Bandung Pagi",
				BusType:   "Executive 2-2",
				RouteFrom: "Jakarta",
				RouteTo:   "Bandung",
				DepartAt:  departBase.Add(8 * time.Hour),
				Price:     150000,
				AdminWA:   "628111222333",
			},
			rows:        7,
			seatsPerRow: 4,
		},
		{
			req: trips.CreateTripRequest{
				Title:     "Jakarta - Yogyakarta Malam",
				BusType:   "Sleeper 1-1",
				RouteFrom: "Jakarta",
				RouteTo:   "Yogyakarta",
				DepartAt:  departBase.Add(20 * time.Hour),
				Price:     350000,
				AdminWA:   "628111222333",
			},
			rows:        9,
			seatsPerRow: 2,
		},
		{
			req: trips.CreateTripRequest{
				Title:     "Surabaya - Malang Sore",
				BusType:   "Economy 2-3",
				RouteFrom: "Surabaya",
				RouteTo:   "Malang",
				DepartAt:  departBase.Add(32 * time.Hour),
				Price:     60000,
				AdminWA:   "628999888777",
			},
			rows:        8,
			seatsPerRow: 5,
		},
	}

	for _, demo := range demoTrips {
		created, err := s.tripService.CreateTrip(ctx, demo.req)
		if err != nil {
			return fmt.Errorf("failed to create trip %q: %w", demo.req.Title, err)
		}

		tripID, err := parseTripID(created.ID)
		if err != nil {
			return err
		}

		result, err := s.seatService.GenerateSeats(ctx, tripID, seats.GenerateSeatsRequest{
			Rows:        demo.rows,
			SeatsPerRow: demo.seatsPerRow,
		})
		if err != nil {
			return fmt.Errorf("failed to generate seats for %q: %w", demo.req.Title, err)
		}

		fmt.Printf("  ✅ %s (%d seats)\n", demo.req.Title, result.TotalSeats)
	}

	return nil
}

func parseTripID(id string) (uuid.UUID, error) {
	tripID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("unexpected trip id %q: %w", id, err)
	}
	return tripID, nil
}
