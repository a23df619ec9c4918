//go:build database

package server

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const databaseSchema = `
CREATE TABLE rating (
	name    text PRIMARY KEY,
	rating  double precision NOT NULL DEFAULT 1500,
	rd      double precision NOT NULL DEFAULT 350,
	sigma   double precision NOT NULL DEFAULT 0.06,
	wins    integer NOT NULL DEFAULT 0,
	losses  integer NOT NULL DEFAULT 0
);
CREATE TABLE game (
	id      serial PRIMARY KEY,
	uuid    text NOT NULL,
	name    text NOT NULL,
	started bigint NOT NULL,
	ended   bigint NOT NULL,
	player1 text NOT NULL,
	player2 text NOT NULL,
	winner  text NOT NULL,
	loser   text NOT NULL,
	replay  text NOT NULL DEFAULT ''
);
`

var (
	db     *pgx.Conn
	dbLock = &sync.Mutex{}
)

func connectDB(dataSource string) error {
	var err error
	db, err = pgx.Connect(context.Background(), dataSource)
	return err
}

func begin() (pgx.Tx, error) {
	tx, err := db.Begin(context.Background())
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(context.Background(), "SET SCHEMA 'bgrules'")
	if err != nil {
		tx.Rollback(context.Background())
		return nil, err
	}
	return tx, nil
}

func testDBConnection() error {
	dbLock.Lock()
	defer dbLock.Unlock()

	_, err := db.Exec(context.Background(), "SELECT 1=1")
	return err
}

func initDB() error {
	dbLock.Lock()
	defer dbLock.Unlock()

	tx, err := begin()
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	var result int
	err = tx.QueryRow(context.Background(), "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'bgrules' AND table_name = 'game'").Scan(&result)
	if err != nil {
		return err
	} else if result > 0 {
		return nil // Database has been initialized.
	}

	_, err = tx.Exec(context.Background(), databaseSchema)
	if err != nil {
		return err
	}
	log.Println("Initialized database schema")
	return tx.Commit(context.Background())
}

func loadRatings(r *ratings) error {
	dbLock.Lock()
	defer dbLock.Unlock()

	if db == nil {
		return nil
	}

	tx, err := begin()
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	rows, err := tx.Query(context.Background(), "SELECT name, rating, rd, sigma, wins, losses FROM rating")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value rating
		err = rows.Scan(&name, &value.R, &value.RD, &value.Sigma, &value.Wins, &value.Losses)
		if err != nil {
			return err
		}
		r.set(name, value)
	}
	return rows.Err()
}

func saveRating(name string, value rating) error {
	dbLock.Lock()
	defer dbLock.Unlock()

	if db == nil {
		return nil
	}

	tx, err := begin()
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	_, err = tx.Exec(context.Background(), `INSERT INTO rating (name, rating, rd, sigma, wins, losses) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET rating = $2, rd = $3, sigma = $4, wins = $5, losses = $6`, strings.ToLower(name), value.R, value.RD, value.Sigma, value.Wins, value.Losses)
	if err != nil {
		return err
	}
	return tx.Commit(context.Background())
}

func recordGameResult(g *serverGame, winner string, loser string, replay [][]byte) error {
	dbLock.Lock()
	defer dbLock.Unlock()

	if db == nil {
		return nil
	}

	tx, err := begin()
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	_, err = tx.Exec(context.Background(), "INSERT INTO game (uuid, name, started, ended, player1, player2, winner, loser, replay) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		g.uuid, string(g.name), g.created, time.Now().Unix(), g.Player1().Name, g.Player2().Name, winner, loser, string(bytes.Join(replay, []byte("\n"))))
	if err != nil {
		return err
	}
	return tx.Commit(context.Background())
}
