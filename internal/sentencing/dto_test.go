package sentencing

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/sentencing/calc"
)

func TestFractionViewSerialization(t *testing.T) {
	fulfilled := date(2025, time.July, 2)
	fraction := Fraction{
		ID:             uuid.New(),
		SentenceID:     uuid.New(),
		Type:           calc.FractionTwoThirds,
		CalculatedDate: date(2026, time.January, 15),
		IsFulfilled:    true,
		FulfilledDate:  &fulfilled,
		Description:    "2/3 din pedeapsă",
	}

	view := NewFractionView(fraction)
	if view.Type != calc.FractionTwoThirds {
		t.Fatalf("Type = %s, want %s", view.Type, calc.FractionTwoThirds)
	}
	if view.CalculatedDate != "2026-01-15" {
		t.Fatalf("CalculatedDate = %s", view.CalculatedDate)
	}
	if view.FulfilledDate == nil || *view.FulfilledDate != "2025-07-02" {
		t.Fatalf("FulfilledDate = %v", view.FulfilledDate)
	}
}

func TestFractionViewOmitsMissingFulfilledDate(t *testing.T) {
	view := NewFractionView(Fraction{
		Type:           calc.FractionOneThird,
		CalculatedDate: date(2025, time.March, 1),
	})
	if view.FulfilledDate != nil {
		t.Fatalf("FulfilledDate = %v, want nil", view.FulfilledDate)
	}
}
