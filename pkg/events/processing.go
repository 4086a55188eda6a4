// Package events expands recurring repayment events into the rounds they fall on.
package events

import (
	"fmt"
)

// Recurrence describes an event repeating every Frequency rounds.
type Recurrence struct {
	StartRound int
	EndRound   int
	Frequency  int // rounds
}

// Processor handles event processing operations
type Processor struct {
	termMonths int
}

// NewProcessor creates a new event processor for a loan of the given term.
func NewProcessor(termMonths int) *Processor {
	return &Processor{termMonths: termMonths}
}

// Rounds returns every round a recurrence falls on. A zero Frequency means a
// one-time event; an unspecified EndRound runs to the end of the term.
func (p *Processor) Rounds(rec Recurrence) ([]int, error) {
	if rec.StartRound < 1 || rec.StartRound > p.termMonths {
		return nil, fmt.Errorf("start round %d is outside the loan term of %d months", rec.StartRound, p.termMonths)
	}
	if rec.Frequency < 0 {
		return nil, fmt.Errorf("frequency must not be negative, got %d", rec.Frequency)
	}

	if rec.Frequency == 0 {
		return []int{rec.StartRound}, nil
	}

	// Unspecified endRound goes to the end of the term.
	endRound := rec.EndRound
	if endRound == 0 {
		endRound = p.termMonths
	}
	if endRound < rec.StartRound {
		return nil, fmt.Errorf("end round %d is before start round %d", endRound, rec.StartRound)
	}
	if endRound > p.termMonths {
		return nil, fmt.Errorf("end round %d is outside the loan term of %d months", endRound, p.termMonths)
	}

	rounds := []int{rec.StartRound}
	for {
		next := rounds[len(rounds)-1] + rec.Frequency
		if next > endRound {
			break
		}
		rounds = append(rounds, next)
	}
	return rounds, nil
}
