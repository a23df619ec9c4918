package main

import (
	"codeberg.org/tslocum/bgrules"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

var faceValues = []float64{1, 2, 3, 4, 5, 6}

type rollStatistics struct {
	Total   int
	Doubles int
	OneSame int
	Faces   [6]int

	Mean      float64
	StdDev    float64
	ChiSquare float64
}

// collectRollStatistics rolls total pairs of dice. The four values of a
// double count as a single pair.
func collectRollStatistics(dice *bgrules.Dice, total int) *rollStatistics {
	s := &rollStatistics{
		Total: total,
	}

	var last []int
	for i := 0; i < total; i++ {
		roll := dice.Roll()
		roll1, roll2 := roll[0], roll[1]

		s.Faces[roll1-1]++
		s.Faces[roll2-1]++

		if dice.IsDouble() {
			s.Doubles++
		}

		if last != nil && (roll1 == last[0] || roll1 == last[1] || roll2 == last[0] || roll2 == last[1]) {
			s.OneSame++
		}
		last = roll
	}

	observed := make([]float64, len(s.Faces))
	expected := make([]float64, len(s.Faces))
	for i, count := range s.Faces {
		observed[i] = float64(count)
		expected[i] = float64(total*2) / float64(len(s.Faces))
	}
	s.Mean = stat.Mean(faceValues, observed)
	s.StdDev = stat.StdDev(faceValues, observed)
	s.ChiSquare = stat.ChiSquare(observed, expected)
	return s
}

func printRollStatistics(p *message.Printer, s *rollStatistics) {
	dice := float64(s.Total * 2)
	p.Printf("Rolled %d pairs of dice.\nDoubles: %d (%.0f%%). One same as last: %d (%.0f%%).\n", s.Total, s.Doubles, float64(s.Doubles)/float64(s.Total)*100, s.OneSame, float64(s.OneSame)/float64(s.Total)*100)
	for i, count := range s.Faces {
		p.Printf("%ds: %d (%.1f%%)\n", i+1, count, float64(count)/dice*100)
	}
	p.Printf("Mean: %.4f. Standard deviation: %.4f. Chi-square (5 degrees of freedom): %.4f.\n", s.Mean, s.StdDev, s.ChiSquare)
}
