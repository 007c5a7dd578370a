package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Jonas-Sn/Trabalho-Final/internal/db"
	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
)

var specialties = []string{
	"General Practice",
	"Nutritionist",
	"Pediatrics",
	"Dermatology",
	"Cardiology",
	"Orthopedics",
	"Neurology",
	"Psychiatry",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store := directory.NewPgStore(pool)

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedFixedPersons(context.Background(), store); err != nil {
		log.Fatalf("seed fixed persons: %v", err)
	}
	if err := seedProviders(context.Background(), store, 20); err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	if err := seedPatients(context.Background(), store, 200); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

// seedFixedPersons installs the well-known demo accounts so the demo flows
// always have someone to talk to.
func seedFixedPersons(ctx context.Context, store directory.Store) error {
	fixed := []directory.Person{
		{ID: "00000000001", Name: "Administrator", Role: directory.RoleAdmin},
		{ID: "00000000002", Name: "Dr. Carlos Silva", Role: directory.RoleProvider, Specialty: ptr("General Practice")},
		{ID: "00000000003", Name: "Dr. Evandro", Role: directory.RoleProvider, Specialty: ptr("Nutritionist")},
		{ID: "00000000004", Name: "Dra. Sonia", Role: directory.RoleProvider, Specialty: ptr("Pediatrics")},
		{ID: "11111111111", Name: "Cristiano", Role: directory.RolePatient},
	}

	for _, p := range fixed {
		if err := store.CreatePerson(ctx, p); err != nil {
			if errors.Is(err, directory.ErrPersonExists) {
				continue
			}
			return err
		}
	}

	log.Println("fixed persons seeded")
	return nil
}

func seedProviders(ctx context.Context, store directory.Store, count int) error {
	log.Printf("seeding %d providers", count)

	for i := 0; i < count; i++ {
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		p := directory.Person{
			ID:        gofakeit.Numerify("###########"),
			Name:      "Dr. " + gofakeit.Name(),
			Role:      directory.RoleProvider,
			Specialty: &spec,
		}
		if err := store.CreatePerson(ctx, p); err != nil && !errors.Is(err, directory.ErrPersonExists) {
			return err
		}
	}

	log.Println("providers seeded")
	return nil
}

func seedPatients(ctx context.Context, store directory.Store, count int) error {
	log.Printf("seeding %d patients", count)

	for i := 0; i < count; i++ {
		p := directory.Person{
			ID:   gofakeit.Numerify("###########"),
			Name: gofakeit.Name(),
			Role: directory.RolePatient,
		}
		if err := store.CreatePerson(ctx, p); err != nil && !errors.Is(err, directory.ErrPersonExists) {
			return err
		}
	}

	log.Println("patients seeded")
	return nil
}

func ptr(s string) *string {
	return &s
}
