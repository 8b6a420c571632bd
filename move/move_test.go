package move

import (
	"testing"

	"github.com/matryer/is"

	"github.com/mvidalg/tavla/board"
)

type notationTestStruct struct {
	side   board.Side
	m      Move
	output string
}

var notationTests = []notationTestStruct{
	{board.White, Move{From: board.PointLoc(0), To: board.PointLoc(5), Die: 5}, "24/19"},
	{board.White, Move{From: board.Bar, To: board.PointLoc(3), Die: 4}, "bar/21"},
	{board.White, Move{From: board.PointLoc(21), To: board.Off, Die: 3}, "3/off"},
	{board.Black, Move{From: board.PointLoc(23), To: board.PointLoc(18), Die: 5}, "24/19"},
	{board.Black, Move{From: board.Bar, To: board.PointLoc(20), Die: 4}, "bar/21"},
	{board.Black, Move{From: board.PointLoc(2), To: board.Off, Die: 3}, "3/off"},
}

func TestNotation(t *testing.T) {
	is := is.New(t)
	for _, tc := range notationTests {
		is.Equal(tc.m.Notation(tc.side), tc.output)
	}
}

func TestPointNumberRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, s := range []board.Side{board.White, board.Black} {
		for pt := 0; pt < board.NumPoints; pt++ {
			num := PointNumber(s, pt)
			is.True(num >= 1 && num <= 24)
			is.Equal(PointIndex(s, num), pt)
		}
	}
}

func TestSequenceKey(t *testing.T) {
	is := is.New(t)
	a := Sequence{
		{From: board.PointLoc(0), To: board.PointLoc(3), Die: 3},
		{From: board.PointLoc(3), To: board.PointLoc(4), Die: 1},
	}
	b := Sequence{
		{From: board.PointLoc(0), To: board.PointLoc(1), Die: 1},
		{From: board.PointLoc(1), To: board.PointLoc(4), Die: 3},
	}
	// same origin and destination but a different die order is a
	// different sequence
	is.True(a.Key() != b.Key())
	is.Equal(a.Key(), a.Copy().Key())
	is.True(a.Key() != Sequence(nil).Key())
}

func TestSequenceEqualAndString(t *testing.T) {
	is := is.New(t)
	a := Sequence{
		{From: board.Bar, To: board.PointLoc(2), Die: 3},
		{From: board.PointLoc(2), To: board.PointLoc(7), Die: 5},
	}
	is.True(a.Equal(a.Copy()))
	is.True(!a.Equal(a[:1]))
	is.Equal(a.String(), "bar>2 2>7")
	is.Equal(a.Notation(board.White), "bar/22 22/17")
	is.Equal(Sequence(nil).String(), "PASS")
	is.Equal(Sequence(nil).Notation(board.Black), "PASS")
}
