package pairing

import (
	"math/rand"
	"testing"

	"random_coffee_bot/internal/domain/participant"
)

func pool(n int) []*participant.Participant {
	out := make([]*participant.Participant, n)
	for i := range out {
		out[i] = &participant.Participant{ID: int64(i + 1), IsActive: true, Frequency: 1}
	}
	return out
}

func TestMatch(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(1)))

	t.Run("produces floor(n/2) pairs and n mod 2 leftovers", func(t *testing.T) {
		for n := 0; n <= 11; n++ {
			res := engine.Match(pool(n))
			wantPairs := n / 2
			if n < 2 {
				wantPairs = 0
			}
			if len(res.Pairs) != wantPairs {
				t.Errorf("n=%d: got %d pairs, want %d", n, len(res.Pairs), wantPairs)
			}
			wantLeftover := n >= 2 && n%2 == 1
			if (res.Leftover != nil) != wantLeftover {
				t.Errorf("n=%d: leftover=%v, want present=%v", n, res.Leftover, wantLeftover)
			}
		}
	})

	t.Run("every participant appears exactly once", func(t *testing.T) {
		res := engine.Match(pool(9))
		seen := make(map[int64]int)
		for _, p := range res.Pairs {
			seen[p.First.ID]++
			seen[p.Second.ID]++
		}
		if res.Leftover != nil {
			seen[res.Leftover.ID]++
		}
		if len(seen) != 9 {
			t.Fatalf("expected 9 distinct participants, got %d", len(seen))
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("participant %d appears %d times", id, count)
			}
		}
	})

	t.Run("input slice is not modified", func(t *testing.T) {
		in := pool(6)
		ids := make([]int64, len(in))
		for i, p := range in {
			ids[i] = p.ID
		}
		engine.Match(in)
		for i, p := range in {
			if p.ID != ids[i] {
				t.Fatalf("input order changed at %d", i)
			}
		}
	})
}

// With 4 participants, participant 1 has 3 possible partners; a uniform
// shuffle pairs it with each roughly a third of the time.
func TestMatchFairness(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(42)))
	const trials = 30000

	partnerCounts := make(map[int64]int)
	for i := 0; i < trials; i++ {
		res := engine.Match(pool(4))
		for _, p := range res.Pairs {
			if p.First.ID == 1 {
				partnerCounts[p.Second.ID]++
			} else if p.Second.ID == 1 {
				partnerCounts[p.First.ID]++
			}
		}
	}

	want := float64(trials) / 3
	for partner := int64(2); partner <= 4; partner++ {
		got := float64(partnerCounts[partner])
		if got < want*0.9 || got > want*1.1 {
			t.Errorf("partner %d seen %d times, want about %.0f", partner, partnerCounts[partner], want)
		}
	}
}
