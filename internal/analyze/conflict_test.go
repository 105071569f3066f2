package analyze

import (
	"testing"
	"time"

	"PoolScanner/internal/domain"
)

var testDate = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

func session(facility, title string, swimType domain.SwimType, startH, startM, endH, endM int) domain.CanonicalSession {
	return domain.CanonicalSession{
		FacilityID: facility,
		Title:      title,
		SwimType:   swimType,
		Date:       testDate,
		Start:      domain.TimeOfDay{Hour: startH, Minute: startM},
		End:        domain.TimeOfDay{Hour: endH, Minute: endM},
	}
}

func TestDetectConflictsOverlap(t *testing.T) {
	t.Parallel()

	sessions := []domain.CanonicalSession{
		session("pool-a", "Lane Swim", domain.LaneSwim, 10, 0, 11, 30),
		session("pool-a", "Aquafit", domain.Aquafit, 11, 0, 12, 30),
	}

	conflicts := DetectConflicts(sessions)
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].OverlapMinutes != 30 {
		t.Fatalf("expected 30 minute overlap, got %d", conflicts[0].OverlapMinutes)
	}
	if conflicts[0].FacilityKey != "pool-a" {
		t.Fatalf("unexpected facility: %s", conflicts[0].FacilityKey)
	}
}

func TestDetectConflictsNoOverlap(t *testing.T) {
	t.Parallel()

	sessions := []domain.CanonicalSession{
		session("pool-a", "Lane Swim", domain.LaneSwim, 10, 0, 11, 30),
		session("pool-a", "Leisure Swim", domain.Recreational, 14, 0, 15, 30),
	}

	if conflicts := DetectConflicts(sessions); len(conflicts) != 0 {
		t.Fatalf("expected 0 conflicts, got %d", len(conflicts))
	}
}

func TestDetectConflictsSeparateFacilities(t *testing.T) {
	t.Parallel()

	sessions := []domain.CanonicalSession{
		session("pool-a", "Lane Swim", domain.LaneSwim, 10, 0, 11, 30),
		session("pool-b", "Lane Swim", domain.LaneSwim, 11, 0, 12, 30),
	}

	if conflicts := DetectConflicts(sessions); len(conflicts) != 0 {
		t.Fatalf("overlap across facilities is not a conflict, got %d", len(conflicts))
	}
}

func TestOptimizePrefersLaneSwim(t *testing.T) {
	t.Parallel()

	sessions := []domain.CanonicalSession{
		session("pool-a", "Aquafit", domain.Aquafit, 10, 0, 12, 0),
		session("pool-a", "Lane Swim", domain.LaneSwim, 10, 30, 11, 30),
	}

	kept, dropped := Optimize(sessions)
	if dropped != 1 {
		t.Fatalf("expected 1 dropped session, got %d", dropped)
	}
	if len(kept) != 1 || kept[0].SwimType != domain.LaneSwim {
		t.Fatalf("lane swim should win: %+v", kept)
	}
}

func TestOptimizePrefersLongerDuration(t *testing.T) {
	t.Parallel()

	sessions := []domain.CanonicalSession{
		session("pool-a", "Leisure Swim", domain.Recreational, 10, 0, 12, 0),
		session("pool-a", "Family Swim", domain.Recreational, 11, 0, 12, 0),
	}

	kept, dropped := Optimize(sessions)
	if dropped != 1 || len(kept) != 1 {
		t.Fatalf("expected one winner, got kept=%d dropped=%d", len(kept), dropped)
	}
	if kept[0].Title != "Leisure Swim" {
		t.Fatalf("longer session should win: %+v", kept[0])
	}
}

func TestOptimizeLeavesConflictFreeGroupsAlone(t *testing.T) {
	t.Parallel()

	sessions := []domain.CanonicalSession{
		session("pool-a", "Lane Swim", domain.LaneSwim, 7, 0, 8, 30),
		session("pool-a", "Aquafit", domain.Aquafit, 9, 0, 10, 0),
		session("pool-b", "Leisure Swim", domain.Recreational, 7, 0, 8, 0),
	}

	kept, dropped := Optimize(sessions)
	if dropped != 0 || len(kept) != 3 {
		t.Fatalf("conflict-free schedule was mutated: kept=%d dropped=%d", len(kept), dropped)
	}
}
