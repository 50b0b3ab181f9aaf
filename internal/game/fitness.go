package game

import (
	"github.com/zyedidia/generic/mapset"

	"pacsim/internal/entity"
	"pacsim/internal/geom"
)

// FitnessRecord accumulates the training signal for one episode.
type FitnessRecord struct {
	Fitness      float64 `json:"fitness"`
	PelletsEaten int     `json:"pellets_eaten"`
	// Stillness counts consecutive ticks without movement.
	Stillness int `json:"stillness"`
	// Streak counts consecutive ticks spent inside a repetitive window.
	Streak int `json:"streak"`

	shaping      Shaping
	window       []geom.Vec
	prevDistance float64
	hasPrev      bool
}

func newFitnessRecord(s Shaping) FitnessRecord {
	return FitnessRecord{shaping: s}
}

// Window returns the recent player positions, oldest first.
func (f FitnessRecord) Window() []geom.Vec {
	return append([]geom.Vec(nil), f.window...)
}

func (f *FitnessRecord) shape(player *entity.Entity, pellets []Pellet, moved bool) {
	s := f.shaping

	dist := pelletDistanceSum(player, pellets)
	if f.hasPrev {
		switch {
		case dist < f.prevDistance:
			f.Fitness += s.CloserReward
		case dist > f.prevDistance:
			f.Fitness -= s.FartherPenalty
		}
	}
	f.prevDistance = dist
	f.hasPrev = true

	f.trackWindow(player.Position)
	f.Fitness += s.AliveReward

	if moved {
		f.Fitness += s.MoveReward
		f.Stillness = 0
	} else {
		f.Stillness++
		f.Fitness -= float64(f.Stillness) * s.StillPenalty
	}
	if f.Stillness > s.StillSoftLimit {
		f.Fitness -= s.StillSoftPenalty
	}
}

// trackWindow penalizes runs where the last WindowSize positions hold at
// most WindowMaxUnique distinct points.
func (f *FitnessRecord) trackWindow(p geom.Vec) {
	s := f.shaping
	if s.WindowSize <= 0 {
		return
	}
	f.window = append(f.window, p)
	if len(f.window) > s.WindowSize {
		f.window = f.window[1:]
	}
	if len(f.window) < s.WindowSize {
		return
	}

	unique := mapset.New[geom.Vec]()
	for _, seen := range f.window {
		unique.Put(seen)
	}
	if unique.Size() <= s.WindowMaxUnique {
		f.Streak++
		f.Fitness -= float64(f.Streak) * s.StreakPenalty
	} else {
		f.Streak = 0
	}
}

func pelletDistanceSum(player *entity.Entity, pellets []Pellet) float64 {
	d := lineDistances(player.Cell, pelletCells(pellets))
	return d[0] + d[1] + d[2] + d[3]
}
