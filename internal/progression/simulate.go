package progression

import (
	"context"
	"strings"
	"time"
)

// Simulation scores activities as if each earlier one had been recorded,
// without writing to the ledger. Dry-run imports use it so totals and
// level-ups chain the way a real import would.
type Simulation struct {
	svc     *Service
	pending map[string]*pendingAwards
}

type pendingAwards struct {
	xp   int
	days []time.Time
}

// Simulate starts a Simulation over the current ledger.
func (s *Service) Simulate() *Simulation {
	return &Simulation{svc: s, pending: make(map[string]*pendingAwards)}
}

// Record scores a on top of the ledger and the activities already
// simulated, then keeps it for later calls. Hooks do not fire.
func (sim *Simulation) Record(ctx context.Context, a Activity) (*Result, error) {
	p, ok := sim.pending[strings.TrimSpace(a.Learner)]
	if !ok {
		p = &pendingAwards{}
	}

	sim.svc.mu.Lock()
	res, err := sim.svc.scoreOn(ctx, a, p.xp, p.days)
	sim.svc.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p.xp += res.Breakdown.Award
	p.days = append(p.days, res.At)
	sim.pending[res.Learner] = p
	return res, nil
}
