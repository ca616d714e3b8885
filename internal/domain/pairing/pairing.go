// internal/domain/pairing/pairing.go
package pairing

import (
	"math/rand"

	"random_coffee_bot/internal/domain/participant"
)

// Pair is two participants matched for one round. Pairs are never persisted;
// they live only for the duration of a single round.
type Pair struct {
	First  *participant.Participant
	Second *participant.Participant
}

// Result is the outcome of one matching pass. Leftover is the single
// unmatched participant when the input size is odd, nil otherwise.
type Result struct {
	Pairs    []Pair
	Leftover *participant.Participant
}

// DeliveryReport aggregates the delivery outcome of one round.
type DeliveryReport struct {
	PairsCount    int     // Pairs with both legs delivered
	PairedCount   int     // Participants in those pairs
	UnpairedCount int     // 1 when a leftover existed, else 0
	FailedIDs     []int64 // Members of pairs where at least one leg failed
}

// Engine produces randomized matchings. The random source is injected so
// tests can seed it; production construction seeds from the clock.
type Engine struct {
	rng *rand.Rand
}

func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Match shuffles the input uniformly and takes consecutive non-overlapping
// pairs from the shuffled order. Fewer than 2 participants yields zero pairs
// and no leftover. The input slice is not modified.
func (e *Engine) Match(participants []*participant.Participant) Result {
	if len(participants) < 2 {
		return Result{}
	}

	shuffled := make([]*participant.Participant, len(participants))
	copy(shuffled, participants)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairs := make([]Pair, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		pairs = append(pairs, Pair{First: shuffled[i], Second: shuffled[i+1]})
	}

	res := Result{Pairs: pairs}
	if len(shuffled)%2 == 1 {
		res.Leftover = shuffled[len(shuffled)-1]
	}
	return res
}
