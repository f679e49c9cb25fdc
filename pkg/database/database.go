package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(ctx context.Context, dbURL string, redisOpts *redis.Options) (*Clients, error) {
	// Connect to PostgreSQL
	db, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Clients{
		DB:    db,
		Redis: redisClient,
	}, nil
}

func (c *Clients) Close() error {
	if err := c.Redis.Close(); err != nil {
		c.DB.Close()
		return err
	}
	return c.DB.Close()
}

// schema is applied in order; every statement is idempotent.
var schema = []struct {
	name string
	ddl  string
}{
	{"profiles", `CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT,
		timezone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`},
	{"medications", `CREATE TABLE IF NOT EXISTS medications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id),
		name TEXT NOT NULL CHECK (name <> ''),
		dosage DOUBLE PRECISION NOT NULL CHECK (dosage > 0),
		unit TEXT NOT NULL DEFAULT 'mg',
		frequency TEXT NOT NULL DEFAULT 'weekly',
		frequency_days DOUBLE PRECISION NOT NULL CHECK (frequency_days > 0),
		preferred_injection_site TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`},
	{"injection_logs", `CREATE TABLE IF NOT EXISTS injection_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id),
		medication_id TEXT NOT NULL REFERENCES medications(id),
		injection_date TIMESTAMPTZ NOT NULL,
		dosage DOUBLE PRECISION NOT NULL CHECK (dosage > 0),
		injection_site TEXT NOT NULL,
		notes TEXT,
		is_completed BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS injection_logs_user_date_idx ON injection_logs (user_id, injection_date DESC);`},
	{"reminders", `CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id),
		medication_id TEXT NOT NULL REFERENCES medications(id),
		reminder_time TEXT NOT NULL,
		hours_before INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`},
	{"export_jobs", `CREATE TABLE IF NOT EXISTS export_jobs (
		id SERIAL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id),
		format TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		file_path TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`},
}

func (c *Clients) CreateTables(ctx context.Context) error {
	for _, table := range schema {
		if _, err := c.DB.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
		slog.Info("✅ Table is ready!", "table", table.name)
	}
	return nil
}
