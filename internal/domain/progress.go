package domain

// ProgressEntry tracks completion of one service's content by one user.
// Entries are created lazily on the first content open and never deleted.
type ProgressEntry struct {
	ServiceID         string   `json:"service_id"`
	CompletedContents []string `json:"completed_contents"`
	TotalContents     int      `json:"total_contents"`
	ProgressPercent   float64  `json:"progress_percent"`
}

// ProgressLedger is the per-user list of per-service completion records,
// stored embedded on the user.
type ProgressLedger []ProgressEntry

// Percent computes completed/total*100 capped at 100. A zero total yields 0.
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(completed) / float64(total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Entry returns the ledger entry for serviceID, if present.
func (l ProgressLedger) Entry(serviceID string) (ProgressEntry, bool) {
	for _, e := range l {
		if e.ServiceID == serviceID {
			return e, true
		}
	}
	return ProgressEntry{}, false
}

// Record marks contentID as opened for serviceID. The add is idempotent:
// re-opening an already-counted item changes nothing. TotalContents is
// always refreshed from the caller-supplied live total, and the percentage
// recomputed from the completed set, never trusted from stored state.
func (l ProgressLedger) Record(serviceID, contentID string, liveTotal int) (ProgressLedger, ProgressEntry) {
	for i, e := range l {
		if e.ServiceID != serviceID {
			continue
		}
		if !contains(e.CompletedContents, contentID) {
			e.CompletedContents = append(e.CompletedContents, contentID)
		}
		e.TotalContents = liveTotal
		e.ProgressPercent = Percent(len(e.CompletedContents), liveTotal)
		l[i] = e
		return l, e
	}

	entry := ProgressEntry{
		ServiceID:         serviceID,
		CompletedContents: []string{contentID},
		TotalContents:     liveTotal,
		ProgressPercent:   Percent(1, liveTotal),
	}
	return append(l, entry), entry
}

// BumpTotal refreshes the stored denominator for serviceID after new content
// was uploaded. The completed set is left untouched, so the percentage can
// drop when content is added after partial progress.
func (l ProgressLedger) BumpTotal(serviceID string, liveTotal int) ProgressLedger {
	for i, e := range l {
		if e.ServiceID != serviceID {
			continue
		}
		e.TotalContents = liveTotal
		e.ProgressPercent = Percent(len(e.CompletedContents), liveTotal)
		l[i] = e
		break
	}
	return l
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
