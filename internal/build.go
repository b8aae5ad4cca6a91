package internal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AIResult is a partial extraction from the external classifier. Nil
// fields mean "not provided" and leave the rule-based guess alone;
// present fields override it outright.
type AIResult struct {
	Name              *string  `json:"name"`
	Amount            *float64 `json:"amount"`
	Cycle             *string  `json:"cycle"`
	StartDate         *string  `json:"start_date"`
	IsTrial           *bool    `json:"is_trial"`
	TrialDurationDays *int     `json:"trial_duration_in_days"`
	TrialEndDate      *string  `json:"trial_end_date"`
	Category          *string  `json:"category"`
}

// BuildSubscription turns one email into a subscription record:
// rule-based base guess, then classifier override, then rule backfill
// for fields still unset, then validation. An unparseable email date
// is an error; the caller skips the email.
func BuildSubscription(email EmailRecord, ai *AIResult) (Subscription, error) {
	date, err := ParseEmailDate(email.Date)
	if err != nil {
		return Subscription{}, fmt.Errorf("email from %s: %w", email.From, err)
	}

	body := StripHTML(email.Body)

	sub := baseSubscription(email, body, date)
	if ai != nil {
		applyClassifierResult(&sub, ai)
	}
	applyRuleBackfill(&sub, email, body, date)
	validate(&sub, date)
	return sub, nil
}

func baseSubscription(email EmailRecord, body string, date time.Time) Subscription {
	name := ExtractServiceName(email.Subject, email.From)
	if name == "" {
		name = "unknown"
	}

	content := strings.ToLower(email.Subject + " " + body)
	return Subscription{
		Name:      name,
		Cycle:     DetectBillingCycle(body),
		StartDate: date.Format("2006-01-02"),
		Category:  DetectCategory(content, strings.ToLower(email.From)),
	}
}

// applyClassifierResult overwrites every field the classifier
// provided. This is a full-field override, not a merge: a provided
// field replaces the rule-based guess even if both are set.
func applyClassifierResult(sub *Subscription, ai *AIResult) {
	if ai.Name != nil {
		sub.Name = *ai.Name
	}
	if ai.Amount != nil {
		sub.Amount = ai.Amount
	}
	if ai.Cycle != nil {
		sub.Cycle = Cycle(*ai.Cycle)
	}
	if ai.StartDate != nil {
		sub.StartDate = *ai.StartDate
	}
	if ai.IsTrial != nil {
		sub.IsTrial = ai.IsTrial
	}
	if ai.TrialDurationDays != nil {
		sub.TrialDurationDays = ai.TrialDurationDays
	}
	if ai.TrialEndDate != nil {
		sub.TrialEndDate = ai.TrialEndDate
	}
	if ai.Category != nil {
		sub.Category = Category(*ai.Category)
	}
}

// applyRuleBackfill fills gaps the classifier left: amount only when
// unset, trial only when not already flagged, category only when it
// is still "other".
func applyRuleBackfill(sub *Subscription, email EmailRecord, body string, date time.Time) {
	content := strings.ToLower(email.Subject + " " + email.Snippet + " " + body)

	if sub.Amount == nil {
		sub.Amount = ExtractAmount(content)
	}

	if sub.IsTrial == nil || !*sub.IsTrial {
		if info := ExtractTrialInfo(content, date); info.IsTrial {
			isTrial := true
			sub.IsTrial = &isTrial
			if info.DurationDays > 0 {
				duration := info.DurationDays
				end := info.EndDate
				sub.TrialDurationDays = &duration
				sub.TrialEndDate = &end
			}
		}
	}

	if sub.Category == CategoryOther {
		sub.Category = DetectCategory(strings.ToLower(email.Subject+" "+body), strings.ToLower(email.From))
	}
}

// validate normalizes the record: lowercase trimmed name, amount
// clamped to (0, 10000] and rounded to cents, start date recomputed
// from the email date (authoritative, also over classifier output),
// and trial fields cleared unless the record is flagged as a trial.
func validate(sub *Subscription, date time.Time) {
	sub.Name = normalizeName(sub.Name)
	if sub.Name == "" {
		sub.Name = "unknown"
	}
	sub.Amount = validAmount(sub.Amount)
	sub.StartDate = date.Format("2006-01-02")

	if sub.IsTrial == nil || !*sub.IsTrial {
		sub.TrialDurationDays = nil
		sub.TrialEndDate = nil
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// validAmount rejects NaN, non-positive and >10000 amounts, and
// rounds the rest half away from zero to two decimals.
func validAmount(amount *float64) *float64 {
	if amount == nil {
		return nil
	}
	v := *amount
	if math.IsNaN(v) || v <= 0 || v > 10000 {
		return nil
	}
	v = math.Round(v*100) / 100
	return &v
}
