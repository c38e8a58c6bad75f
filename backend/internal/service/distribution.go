package service

import (
	"strings"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// Partition splits total items over n users: every user gets total/n and the
// first user also takes the remainder. It returns nil when n <= 0.
func Partition(total, n int) []int {
	if n <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	base, remainder := total/n, total%n
	counts := make([]int, n)
	for i := range counts {
		counts[i] = base
	}
	counts[0] += remainder
	return counts
}

// filterNew drops shipments whose resi number is already in existing, repeated
// within the batch, or empty. Order is preserved and the first occurrence wins.
func filterNew(shipments []skylink.Shipment, existing map[string]struct{}) (fresh []skylink.Shipment, skipped []string) {
	seen := make(map[string]struct{}, len(shipments))
	for _, s := range shipments {
		resi := strings.TrimSpace(s.ResiNumber)
		if resi == "" {
			skipped = append(skipped, "")
			continue
		}
		if _, ok := existing[resi]; ok {
			skipped = append(skipped, resi)
			continue
		}
		if _, ok := seen[resi]; ok {
			skipped = append(skipped, resi)
			continue
		}
		seen[resi] = struct{}{}
		s.ResiNumber = resi
		fresh = append(fresh, s)
	}
	return fresh, skipped
}

// resiNumbers lists the distinct non-empty resi numbers of shipments.
func resiNumbers(shipments []skylink.Shipment) []string {
	seen := make(map[string]struct{}, len(shipments))
	out := make([]string, 0, len(shipments))
	for _, s := range shipments {
		resi := strings.TrimSpace(s.ResiNumber)
		if resi == "" {
			continue
		}
		if _, ok := seen[resi]; ok {
			continue
		}
		seen[resi] = struct{}{}
		out = append(out, resi)
	}
	return out
}

// assign walks fresh in order and gives counts[i] consecutive items to userIDs[i].
func assign(fresh []skylink.Shipment, userIDs []uint, counts []int) []model.Cutoff {
	items := make([]model.Cutoff, 0, len(fresh))
	next := 0
	for i, userID := range userIDs {
		for j := 0; j < counts[i] && next < len(fresh); j++ {
			s := fresh[next]
			lock := s.ResiNumber
			items = append(items, model.Cutoff{
				ShipmentID:   s.ID,
				SchoolName:   s.SchoolName,
				NPSN:         s.SchoolID.String(),
				ResiNumber:   s.ResiNumber,
				BappNumber:   s.BappNumber,
				StarlinkID:   s.StarlinkID,
				ReceivedDate: s.ReceivedAt(),
				UserID:       userID,
				ResiLock:     &lock,
			})
			next++
		}
	}
	return items
}

// dedupeIDs removes repeated ids keeping the first occurrence.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
