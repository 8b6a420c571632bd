package automatic

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/mvidalg/tavla/game"
)

func TestStoreTally(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "tavla.db")

	st, err := NewStore(path)
	is.NoErr(err)

	players := [2]string{"twoply+csp", "oneply"}
	results := []GameResult{
		{Index: 0, Winner: 0, Reason: game.Win, Turns: 61, Elapsed: 3 * time.Second, Players: players},
		{Index: 1, Winner: 0, Reason: game.Win, Turns: 55, Elapsed: 2 * time.Second, Players: players},
		{Index: 2, Winner: 1, Reason: game.Win, Turns: 70, Elapsed: 4 * time.Second, Players: players},
		{Index: 3, Winner: -1, Reason: game.Stalemate, Turns: 200, Elapsed: time.Second, Players: players},
	}
	for _, res := range results {
		is.NoErr(st.SaveResult(res))
	}
	is.NoErr(st.Close())

	// Reopen to prove the rows actually hit disk.
	st, err = NewStore(path)
	is.NoErr(err)
	defer st.Close()

	rows, total, err := st.Tally()
	is.NoErr(err)
	is.Equal(total, 4)
	is.Equal(len(rows), 3)
	is.Equal(rows[0], WinnerRow{Player: "twoply+csp", Wins: 2})

	wins := map[string]int{}
	for _, row := range rows {
		wins[row.Player] = row.Wins
	}
	is.Equal(wins["oneply"], 1)
	is.Equal(wins["(none)"], 1)
}
