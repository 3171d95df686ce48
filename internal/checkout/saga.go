package checkout

import "fmt"

// State is a step of the checkout saga.
type State string

const (
	StateInitiated            State = "initiated"
	StateStockReserved        State = "stock_reserved"
	StateOrderCommitted       State = "order_committed"
	StateCustomerStatsUpdated State = "customer_stats_updated"
	StateCartCleared          State = "cart_cleared"
	StateFailed               State = "failed"
)

var next = map[State]State{
	StateInitiated:            StateStockReserved,
	StateStockReserved:        StateOrderCommitted,
	StateOrderCommitted:       StateCustomerStatsUpdated,
	StateCustomerStatsUpdated: StateCartCleared,
}

// CanTransitionTo allows the next step in order, or failure before the order is committed to the database.
func (s State) CanTransitionTo(to State) bool {
	if to == StateFailed {
		return s == StateInitiated || s == StateStockReserved || s == StateOrderCommitted || s == StateCustomerStatsUpdated
	}
	return next[s] == to
}

type saga struct {
	state State
	trail []State
}

func newSaga() *saga {
	return &saga{state: StateInitiated, trail: []State{StateInitiated}}
}

func (s *saga) advance(to State) error {
	if !s.state.CanTransitionTo(to) {
		return fmt.Errorf("checkout saga: illegal transition %s -> %s", s.state, to)
	}
	s.state = to
	s.trail = append(s.trail, to)
	return nil
}

func (s *saga) fail() {
	if s.state.CanTransitionTo(StateFailed) {
		s.state = StateFailed
		s.trail = append(s.trail, StateFailed)
	}
}
