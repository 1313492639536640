package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome identifies one of the three match results
type Outcome int

// Match outcomes in fixed order: home, draw, away
const (
	OutcomeHome Outcome = iota
	OutcomeDraw
	OutcomeAway
)

// AllOutcomes lists the outcomes in canonical order
var AllOutcomes = [3]Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}

// Index returns the position of the outcome in probability triples
func (o Outcome) Index() int {
	return int(o)
}

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeHome:
		return "home"
	case OutcomeDraw:
		return "draw"
	case OutcomeAway:
		return "away"
	default:
		return "unknown"
	}
}

// ParseOutcome converts an outcome name to its enum value
func ParseOutcome(name string) (Outcome, error) {
	switch name {
	case "home":
		return OutcomeHome, nil
	case "draw":
		return OutcomeDraw, nil
	case "away":
		return OutcomeAway, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", name)
	}
}

// RealizedOutcome records the actual result of a match together with the
// raw ensemble probabilities that were produced before the match.
// Records are append-only; the calibration loop consumes them in
// rolling windows and never mutates them.
type RealizedOutcome struct {
	MatchID    uuid.UUID       `db:"match_id" json:"match_id" validate:"required"`
	Raw        ModelPrediction `db:"-" json:"raw"`
	Result     Outcome         `db:"result" json:"result"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at" validate:"required"`
}
