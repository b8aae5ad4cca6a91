package internal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "receipt from Spotify - March" captures "Spotify"
	subjectNameRe = regexp.MustCompile(`(?i)(?:from|for|to) ([\w\s&]+?)(?:\s*-|\s*\(|$)`)
	roleWordsRe   = regexp.MustCompile(`(?i)\b(?:no[-_]?reply|support|info|service|billing)\b`)
	separatorsRe  = regexp.MustCompile(`[._-]`)
)

// ExtractServiceName guesses the service name from the subject line
// and the sender address. Priority: subject pattern, then the local
// part of the sender with generic role words removed, then the first
// label of the sender domain. Returns "" when all three come up empty;
// casing is left alone (validation lowercases later).
func ExtractServiceName(subject, from string) string {
	if m := subjectNameRe.FindStringSubmatch(subject); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}

	local, domain, _ := strings.Cut(from, "@")

	if local != "" {
		name := strings.NewReplacer("<", "", ">", "").Replace(local)
		name = roleWordsRe.ReplaceAllString(name, "")
		name = separatorsRe.ReplaceAllString(name, " ")
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}

	if domain != "" {
		label, _, _ := strings.Cut(domain, ".")
		label = separatorsRe.ReplaceAllString(label, " ")
		if label = strings.TrimSpace(label); label != "" {
			return label
		}
	}

	return ""
}

// cyclePatterns is evaluated in order; the first match wins. The order
// is part of the contract (e.g. "12-month" must resolve to yearly
// before the monthly pattern sees "month").
var cyclePatterns = []struct {
	cycle Cycle
	re    *regexp.Regexp
}{
	{CycleYearly, regexp.MustCompile(`(?i)\b(?:annual|yearly|year|12.?month|365.?day)\b`)},
	{CycleMonthly, regexp.MustCompile(`(?i)\b(?:monthly|month|30.?day)\b`)},
	{CycleWeekly, regexp.MustCompile(`(?i)\b(?:weekly|week|7.?day)\b`)},
	{CycleBiWeekly, regexp.MustCompile(`(?i)\b(?:bi.?weekly|every.?two.?weeks|every.?other.?week)\b`)},
	{CycleQuarterly, regexp.MustCompile(`(?i)\b(?:quarterly|quarter|3.?month|90.?day)\b`)},
	{CycleBiMonthly, regexp.MustCompile(`(?i)\b(?:bi.?monthly|every.?two.?months)\b`)},
	{CycleBiYearly, regexp.MustCompile(`(?i)\b(?:bi.?yearly|semi.?annual|twice.?a.?year)\b`)},
}

// DetectBillingCycle returns the first billing cycle whose keyword
// pattern matches the content, or CycleUnknown.
func DetectBillingCycle(content string) Cycle {
	for _, p := range cyclePatterns {
		if p.re.MatchString(content) {
			return p.cycle
		}
	}
	return CycleUnknown
}

// categoryPatterns is evaluated in order; the first match wins.
// Categories overlap (e.g. "backup" appears under both software and
// storage), so the declared order is the tie-break.
var categoryPatterns = []struct {
	category Category
	re       *regexp.Regexp
}{
	{CategoryStreaming, regexp.MustCompile(`(?i)\b(?:stream|video|music|audio|movie|show|episode|playlist|netflix|hulu|disney|spotify)\b`)},
	{CategoryUtilities, regexp.MustCompile(`(?i)\b(?:utility|electric|water|gas|internet|cable|phone|broadband|bill|xfinity|comcast)\b`)},
	{CategorySoftware, regexp.MustCompile(`(?i)\b(?:software|app|application|platform|tool|service|cloud|storage|backup)\b`)},
	{CategoryRent, regexp.MustCompile(`(?i)\b(?:rent|lease|apartment|housing|property|tenant|landlord|manor|estate)\b`)},
	{CategoryInsurance, regexp.MustCompile(`(?i)\b(?:insurance|coverage|policy|premium|protection|claim)\b`)},
	{CategoryFoodDelivery, regexp.MustCompile(`(?i)\b(?:food|delivery|meal|restaurant|order|grocery|doordash|uber|grubhub)\b`)},
	{CategoryStorage, regexp.MustCompile(`(?i)\b(?:storage|space|drive|backup|cloud|icloud)\b`)},
	{CategoryEntertainment, regexp.MustCompile(`(?i)\b(?:game|gaming|entertainment|subscription|content)\b`)},
}

// DetectCategory classifies an email by testing each category pattern
// against the combined subject+body content and the sender address.
// Returns CategoryOther when nothing matches.
func DetectCategory(content, from string) Category {
	for _, p := range categoryPatterns {
		if p.re.MatchString(content) || p.re.MatchString(from) {
			return p.category
		}
	}
	return CategoryOther
}

var (
	trialRe         = regexp.MustCompile(`(?i)\b(?:trial|free.?period|try.?for.?free)\b`)
	trialDurationRe = regexp.MustCompile(`(?i)\b(\d+)[\s-]*(day|week|month)s?\b`)
)

// TrialInfo is the result of trial detection. DurationDays and EndDate
// are zero-valued when trial language was found but no duration.
type TrialInfo struct {
	IsTrial      bool
	DurationDays int
	EndDate      string // YYYY-MM-DD
}

// ExtractTrialInfo detects trial language in the content and, when a
// "<number> <unit>" duration follows, computes the trial length in
// days and the end date relative to start.
func ExtractTrialInfo(content string, start time.Time) TrialInfo {
	if !trialRe.MatchString(content) {
		return TrialInfo{}
	}

	m := trialDurationRe.FindStringSubmatch(content)
	if m == nil {
		return TrialInfo{IsTrial: true}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return TrialInfo{IsTrial: true}
	}

	multiplier := 1
	switch strings.ToLower(m[2]) {
	case "week":
		multiplier = 7
	case "month":
		multiplier = 30
	}

	days := n * multiplier
	return TrialInfo{
		IsTrial:      true,
		DurationDays: days,
		EndDate:      start.AddDate(0, 0, days).Format("2006-01-02"),
	}
}

var amountRe = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// ExtractAmount returns the first dollar amount in the text with
// thousands separators stripped, or nil when none is found. Later
// occurrences are ignored.
func ExtractAmount(text string) *float64 {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}
