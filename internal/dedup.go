package internal

import "time"

// Deduplicate collapses records sharing an identity key into one
// canonical record per subscription. Output order is the order of
// first appearance of each key.
func Deduplicate(subs []Subscription) []Subscription {
	var order []string
	groups := make(map[string][]Subscription)

	for _, sub := range subs {
		key := sub.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sub)
	}

	result := make([]Subscription, 0, len(order))
	for _, key := range order {
		result = append(result, mergeGroup(groups[key]))
	}
	return result
}

// mergeGroup folds a group left to right keeping the record with the
// latest start date, backfilling its unset amount and trial fields
// from the previously accumulated record. Equal start dates keep the
// earlier-seen record (stable tie-break).
func mergeGroup(group []Subscription) Subscription {
	latest := group[0]
	for _, cur := range group[1:] {
		if !startsAfter(cur, latest) {
			continue
		}

		merged := cur
		if merged.Amount == nil {
			merged.Amount = latest.Amount
		}
		merged.IsTrial = mergeTrialFlag(cur.IsTrial, latest.IsTrial)
		if merged.TrialDurationDays == nil {
			merged.TrialDurationDays = latest.TrialDurationDays
		}
		if merged.TrialEndDate == nil {
			merged.TrialEndDate = latest.TrialEndDate
		}
		latest = merged
	}
	return latest
}

// mergeTrialFlag keeps a true flag on the newer record, otherwise
// carries the previous value (which may itself be unset or false).
func mergeTrialFlag(cur, prev *bool) *bool {
	if cur != nil && *cur {
		return cur
	}
	if prev != nil {
		return prev
	}
	return cur
}

// startsAfter reports whether a's start date is strictly after b's.
// Unparseable dates never displace the accumulated record.
func startsAfter(a, b Subscription) bool {
	ad, errA := time.Parse("2006-01-02", a.StartDate)
	bd, errB := time.Parse("2006-01-02", b.StartDate)
	if errA != nil || errB != nil {
		return false
	}
	return ad.After(bd)
}
