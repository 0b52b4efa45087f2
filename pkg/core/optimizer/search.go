package optimizer

import (
	"context"
	"encoding/binary"
	"math"
	"math/bits"
	"time"

	"github.com/jakechorley/shift-planner/pkg/core/assignment"
)

// budgetCheckInterval is how many nodes pass between clock and context checks (minus one)
const budgetCheckInterval = 1<<10 - 1

// search is a depth-first branch and bound over employees in input order.
//
// A node is identified by (employees decided, workers per hour, min hours,
// max hours). Every objective and bound of the remaining subtree depends on
// that state alone, so a state seen before can never yield a strictly better
// solution and is skipped.
type search struct {
	ctx       context.Context
	model     *assignment.Model
	objective assignment.Objective
	deadline  time.Time
	nodeLimit int64
	memoLimit int

	hours     int
	minNeed   []int
	capacity  []int
	reach     [][]int
	sufMinMax []int

	underBound, spreadBound, overBound int

	workers []int
	current []int

	best  []int
	limit int
	found bool

	nodes   int64
	stopped string
	err     error
	visited map[string]struct{}
	key     []byte
}

func newSearch(ctx context.Context, m *assignment.Model, objective assignment.Objective, settings Settings) *search {
	n := len(m.Employees)
	hours := m.Hours()

	s := &search{
		ctx:         ctx,
		model:       m,
		objective:   objective,
		nodeLimit:   settings.StageNodeLimit,
		memoLimit:   settings.MemoLimit,
		hours:       hours,
		minNeed:     m.Config.MinWorkers,
		capacity:    m.Config.MaxWorkers,
		reach:       make([][]int, n+1),
		sufMinMax:   make([]int, n+1),
		underBound:  math.MaxInt,
		spreadBound: math.MaxInt,
		overBound:   math.MaxInt,
		workers:     make([]int, hours),
		current:     make([]int, n),
		limit:       math.MaxInt,
		visited:     make(map[string]struct{}),
	}
	if settings.StageTimeLimit > 0 {
		s.deadline = time.Now().Add(settings.StageTimeLimit)
	}

	if v, ok := m.BoundFor(assignment.Understaff); ok {
		s.underBound = v
	}
	if v, ok := m.BoundFor(assignment.FairnessSpread); ok {
		s.spreadBound = v
	}
	if v, ok := m.BoundFor(assignment.OverCoverage); ok {
		s.overBound = v
	}

	// reach[i][h] counts employees from i onwards who could still work hour h
	s.reach[n] = make([]int, hours)
	s.sufMinMax[n] = math.MaxInt
	for i := n - 1; i >= 0; i-- {
		s.reach[i] = make([]int, hours)
		copy(s.reach[i], s.reach[i+1])

		var union uint64
		maxHours := 0
		for _, c := range m.Employees[i].Choices {
			union |= c.Mask
			maxHours = max(maxHours, c.Hours)
		}
		for mask := union; mask != 0; mask &= mask - 1 {
			s.reach[i][bits.TrailingZeros64(mask)]++
		}
		s.sufMinMax[i] = min(s.sufMinMax[i+1], maxHours)
	}

	return s
}

// run explores the whole tree, or until a budget or the context stops it
func (s *search) run() {
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return
	}
	s.dfs(0, 0, 0)
}

func (s *search) halted() bool {
	return s.err != nil || s.stopped != ""
}

func (s *search) dfs(i, minHours, maxHours int) {
	s.nodes++
	if s.nodeLimit > 0 && s.nodes > s.nodeLimit {
		s.stopped = StopNodeLimit
		return
	}
	if s.nodes&budgetCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			s.stopped = StopTimeLimit
			return
		}
	}

	employees := s.model.Employees
	if i == len(employees) {
		s.leaf(minHours, maxHours)
		return
	}

	if s.prune(i, minHours, maxHours) {
		return
	}
	if s.seen(i, minHours, maxHours) {
		return
	}

	for ci, choice := range employees[i].Choices {
		if !s.fits(choice.Mask) {
			continue
		}

		s.add(choice.Mask, 1)
		s.current[i] = ci

		nextMin, nextMax := choice.Hours, choice.Hours
		if i > 0 {
			nextMin = min(minHours, choice.Hours)
			nextMax = max(maxHours, choice.Hours)
		}
		s.dfs(i+1, nextMin, nextMax)

		s.add(choice.Mask, -1)
		if s.halted() {
			return
		}
	}
}

func (s *search) fits(mask uint64) bool {
	for ; mask != 0; mask &= mask - 1 {
		h := bits.TrailingZeros64(mask)
		if s.workers[h]+1 > s.capacity[h] {
			return false
		}
	}
	return true
}

func (s *search) add(mask uint64, delta int) {
	for ; mask != 0; mask &= mask - 1 {
		s.workers[bits.TrailingZeros64(mask)] += delta
	}
}

func (s *search) leaf(minHours, maxHours int) {
	under, over := 0, 0
	for h := 0; h < s.hours; h++ {
		if s.workers[h] < s.minNeed[h] {
			under += s.minNeed[h] - s.workers[h]
		} else {
			over += s.workers[h] - s.minNeed[h]
		}
	}
	spread := 0
	if len(s.model.Employees) > 0 {
		spread = maxHours - minHours
	}

	if under > s.underBound || spread > s.spreadBound || over > s.overBound {
		return
	}

	var value int
	switch s.objective {
	case assignment.Understaff:
		value = under
	case assignment.FairnessSpread:
		value = spread
	default:
		value = over
	}

	if value < s.limit {
		s.limit = value
		s.found = true
		s.best = append(s.best[:0], s.current...)
	}
}

// prune applies lower bounds on each objective against the frozen bounds
// and the incumbent.
func (s *search) prune(i, minHours, maxHours int) bool {
	under := s.lowerUnderstaff(i)
	if under > s.underBound {
		return true
	}
	spread := s.lowerSpread(i, minHours, maxHours)
	if spread > s.spreadBound {
		return true
	}
	over := s.lowerOverCoverage()
	if over > s.overBound {
		return true
	}

	switch s.objective {
	case assignment.Understaff:
		return under >= s.limit
	case assignment.FairnessSpread:
		return spread >= s.limit
	default:
		return over >= s.limit
	}
}

// lowerUnderstaff assumes every remaining employee able to work an hour does,
// up to the hourly cap.
func (s *search) lowerUnderstaff(i int) int {
	total := 0
	for h := 0; h < s.hours; h++ {
		gap := s.minNeed[h] - s.workers[h]
		if gap <= 0 {
			continue
		}
		extra := min(s.reach[i][h], s.capacity[h]-s.workers[h])
		if gap > extra {
			total += gap - extra
		}
	}
	return total
}

// lowerSpread uses the fact that the final maximum can't drop and the final
// minimum can't exceed any remaining employee's largest choice.
func (s *search) lowerSpread(i, minHours, maxHours int) int {
	if i == 0 {
		return 0
	}
	lowest := min(minHours, s.sufMinMax[i])
	return max(0, maxHours-lowest)
}

// lowerOverCoverage is the current surplus, workers only ever increase
func (s *search) lowerOverCoverage() int {
	total := 0
	for h := 0; h < s.hours; h++ {
		if s.workers[h] > s.minNeed[h] {
			total += s.workers[h] - s.minNeed[h]
		}
	}
	return total
}

func (s *search) seen(i, minHours, maxHours int) bool {
	s.key = s.key[:0]
	s.key = binary.AppendUvarint(s.key, uint64(i))
	if i > 0 {
		s.key = binary.AppendUvarint(s.key, uint64(minHours))
		s.key = binary.AppendUvarint(s.key, uint64(maxHours))
	}
	for _, w := range s.workers {
		s.key = binary.AppendUvarint(s.key, uint64(w))
	}

	if _, ok := s.visited[string(s.key)]; ok {
		return true
	}
	if s.memoLimit <= 0 || len(s.visited) < s.memoLimit {
		s.visited[string(s.key)] = struct{}{}
	}
	return false
}
