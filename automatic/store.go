package automatic

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Store records finished games in a sqlite database so experiments can
// be tallied across runs.
type Store struct {
	db *sql.DB
}

const createGamesTable = `
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	played_at TEXT NOT NULL,
	p0 TEXT NOT NULL,
	p1 TEXT NOT NULL,
	winner INTEGER NOT NULL,
	reason TEXT NOT NULL,
	turns INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL
)`

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createGamesTable); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (st *Store) Close() error { return st.db.Close() }

// SaveResult appends one game row.
func (st *Store) SaveResult(res GameResult) error {
	_, err := st.db.Exec(
		`INSERT INTO games (played_at, p0, p1, winner, reason, turns, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		res.Players[0], res.Players[1], res.Winner,
		res.Reason.String(), res.Turns, res.Elapsed.Milliseconds())
	return err
}

// WinnerRow is one line of the all-time tally.
type WinnerRow struct {
	Player string
	Wins   int
}

// Tally counts wins per player name across every stored game. Games
// without a winner are counted under "(none)".
func (st *Store) Tally() ([]WinnerRow, int, error) {
	total := 0
	if err := st.db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := st.db.Query(`
		SELECT CASE winner WHEN 0 THEN p0 WHEN 1 THEN p1 ELSE '(none)' END AS name,
		       COUNT(*)
		FROM games GROUP BY name ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []WinnerRow
	for rows.Next() {
		var r WinnerRow
		if err := rows.Scan(&r.Player, &r.Wins); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
