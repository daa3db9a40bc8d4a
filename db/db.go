package db

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"
)

// Init opens Postgres and bootstraps the schema. Fatal on failure: the
// API cannot serve without its relational store.
func Init(dsn string) *sql.DB {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Could not connect to database:", err)
	}
	if err := conn.Ping(); err != nil {
		log.Fatal("Could not ping database:", err)
	}

	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(10)

	createTables(conn)
	return conn
}

func createTables(conn *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		);`,
		// event_id is a UUID shared with the Mongo events collection
		`CREATE TABLE IF NOT EXISTS registrations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			event_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, event_id)
		);`,
		`CREATE TABLE IF NOT EXISTS event_likes (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			event_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, event_id)
		);`,
		`CREATE TABLE IF NOT EXISTS follows (
			id BIGSERIAL PRIMARY KEY,
			follower_id BIGINT NOT NULL REFERENCES users(id),
			followee_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (follower_id, followee_id),
			CHECK (follower_id <> followee_id)
		);`,
		// the metrics aggregate scans by event id
		`CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations(event_id);`,
		`CREATE INDEX IF NOT EXISTS idx_event_likes_event ON event_likes(event_id);`,
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			log.Fatal("Could not create tables:", err)
		}
	}
}
