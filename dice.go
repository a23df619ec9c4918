package bgrules

import (
	"crypto/rand"
	"math/big"
)

// Roller returns a uniformly distributed die face between 1 and 6.
type Roller func() int

// RollDie rolls a single die using a cryptographically secure source.
func RollDie() int {
	return RandInt(6) + 1
}

// RandInt returns a uniformly distributed integer in [0, max).
func RandInt(max int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}
	return int(i.Int64())
}

type Dice struct {
	roller   Roller
	lastRoll []int
}

// NewDice returns dice which use the provided roller. When roller is nil,
// RollDie is used.
func NewDice(roller Roller) *Dice {
	if roller == nil {
		roller = RollDie
	}
	return &Dice{
		roller: roller,
	}
}

// Roll rolls two dice. Doubles are returned as four of the same value.
func (d *Dice) Roll() []int {
	roll1, roll2 := d.roller(), d.roller()
	if roll1 == roll2 {
		d.lastRoll = []int{roll1, roll1, roll1, roll1}
	} else {
		d.lastRoll = []int{roll1, roll2}
	}
	return d.LastRoll()
}

// LastRoll returns the values of the last roll, or nil before the first roll.
func (d *Dice) LastRoll() []int {
	if d.lastRoll == nil {
		return nil
	}
	roll := make([]int, len(d.lastRoll))
	copy(roll, d.lastRoll)
	return roll
}

func (d *Dice) IsDouble() bool {
	return len(d.lastRoll) == 4
}
