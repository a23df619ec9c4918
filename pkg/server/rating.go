package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/jlouis/glicko2"
)

const (
	initialRating     = 1500
	initialDeviation  = 350
	initialVolatility = 0.06
	ratingTau         = 0.6
)

type rating struct {
	R      float64
	RD     float64
	Sigma  float64
	Wins   int
	Losses int
}

type ratingPlayer struct {
	r       float64
	rd      float64
	sigma   float64
	outcome float64
}

func (p ratingPlayer) R() float64 {
	return p.r
}

func (p ratingPlayer) RD() float64 {
	return p.rd
}

func (p ratingPlayer) Sigma() float64 {
	return p.sigma
}

func (p ratingPlayer) SJ() float64 {
	return p.outcome
}

type leaderboardEntry struct {
	Name      string
	Rating    int
	Deviation int
	Wins      int
	Losses    int
}

// ratings tracks the glicko2 rating of every player who has finished a match.
type ratings struct {
	players map[string]*rating
	sync.Mutex
}

func newRatings() *ratings {
	return &ratings{
		players: make(map[string]*rating),
	}
}

func (r *ratings) lookup(name string) *rating {
	key := strings.ToLower(name)
	p := r.players[key]
	if p == nil {
		p = &rating{
			R:     initialRating,
			RD:    initialDeviation,
			Sigma: initialVolatility,
		}
		r.players[key] = p
	}
	return p
}

func (r *ratings) get(name string) rating {
	r.Lock()
	defer r.Unlock()

	return *r.lookup(name)
}

func (r *ratings) set(name string, value rating) {
	r.Lock()
	defer r.Unlock()

	*r.lookup(name) = value
}

// record updates the ratings of both players of a finished match and returns
// their new ratings.
func (r *ratings) record(winner string, loser string) (float64, float64) {
	r.Lock()
	defer r.Unlock()

	w, l := r.lookup(winner), r.lookup(loser)
	wR, wRD, wSigma := glicko2.Rank(w.R, w.RD, w.Sigma, []glicko2.Opponent{ratingPlayer{l.R, l.RD, l.Sigma, 1}}, ratingTau)
	lR, lRD, lSigma := glicko2.Rank(l.R, l.RD, l.Sigma, []glicko2.Opponent{ratingPlayer{w.R, w.RD, w.Sigma, 0}}, ratingTau)

	w.R, w.RD, w.Sigma = wR, wRD, wSigma
	w.Wins++
	l.R, l.RD, l.Sigma = lR, lRD, lSigma
	l.Losses++
	return w.R, l.R
}

func (r *ratings) leaderboard() []leaderboardEntry {
	r.Lock()
	defer r.Unlock()

	entries := make([]leaderboardEntry, 0, len(r.players))
	for name, p := range r.players {
		entries = append(entries, leaderboardEntry{
			Name:      name,
			Rating:    int(p.R),
			Deviation: int(p.RD),
			Wins:      p.Wins,
			Losses:    p.Losses,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating == entries[j].Rating {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Rating > entries[j].Rating
	})
	return entries
}
