// Package integrity validates that a retrieved event chain is signed, ordered and
// unbroken. Verification is pure: no mutation of inputs, no external calls, and the
// verdict is a value the caller applies policy to.
package integrity

import (
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"sort"
	"time"
)

// Verify checks one subject's retrieved events for tampering. The working copy is
// sorted by timestamp ascending; within that ordering every non-empty PreviousEventID
// must resolve to an event id already seen, and every signature must be present.
func Verify(events []trace.EventRecord) trace.IntegrityVerdict {
	sorted := make([]trace.EventRecord, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	signaturesValid := true
	for _, event := range sorted {
		if !event.Signed() {
			signaturesValid = false
			break
		}
	}

	sequenceValid := true
	var missingLinks []string

	// Timestamps are non-decreasing by construction after the sort, so reordering is
	// caught through the chain linkage: an event moved ahead of its predecessor leaves
	// a forward reference behind it.
	seen := make(map[string]struct{}, len(sorted))
	for _, event := range sorted {
		if event.PreviousEventID != "" {
			if _, ok := seen[event.PreviousEventID]; !ok {
				// Missing or forward reference: the chain is broken at this event.
				sequenceValid = false
				missingLinks = append(missingLinks, event.PreviousEventID)
			}
		}

		seen[event.EventID()] = struct{}{}
	}

	valid := signaturesValid && sequenceValid

	return trace.IntegrityVerdict{
		Valid:             valid,
		SequenceValid:     sequenceValid,
		SignaturesValid:   signaturesValid,
		TamperingDetected: !valid,
		Details: trace.VerdictDetails{
			ExpectedSequence: eventIds(sorted),
			ActualSequence:   eventIds(events),
			MissingLinks:     missingLinks,
			ValidatedAt:      time.Now().UTC(),
		},
	}
}

func eventIds(events []trace.EventRecord) []string {
	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.EventID()
	}

	return ids
}
