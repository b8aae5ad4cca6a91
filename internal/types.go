package internal

// EmailRecord is one raw email as exported from a mail provider.
type EmailRecord struct {
	Body    string `json:"body"`
	Snippet string `json:"snippet"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

// Cycle is a billing cycle.
type Cycle string

const (
	CycleMonthly   Cycle = "monthly"
	CycleYearly    Cycle = "yearly"
	CycleWeekly    Cycle = "weekly"
	CycleBiWeekly  Cycle = "bi-weekly"
	CycleQuarterly Cycle = "quarterly"
	CycleBiMonthly Cycle = "bi-monthly"
	CycleBiYearly  Cycle = "bi-yearly"
	CycleUnknown   Cycle = "unknown"
)

// Category classifies what kind of service a subscription pays for.
type Category string

const (
	CategoryStreaming     Category = "streaming"
	CategoryUtilities     Category = "utilities"
	CategorySoftware      Category = "software"
	CategoryRent          Category = "rent"
	CategoryInsurance     Category = "insurance"
	CategoryFoodDelivery  Category = "food_delivery"
	CategoryStorage       Category = "storage"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// Subscription is one detected recurring payment. Optional fields are
// pointers so that "not extracted" stays distinguishable from a zero
// value and is omitted from JSON output.
type Subscription struct {
	Name              string   `json:"name"`
	Amount            *float64 `json:"amount,omitempty"`
	Cycle             Cycle    `json:"cycle"`
	StartDate         string   `json:"start_date"`
	IsTrial           *bool    `json:"is_trial,omitempty"`
	TrialDurationDays *int     `json:"trial_duration_in_days,omitempty"`
	TrialEndDate      *string  `json:"trial_end_date,omitempty"`
	Category          Category `json:"category"`
}

// Key returns the identity key used for deduplication: two records
// with the same (name, category) pair denote the same subscription.
func (s Subscription) Key() string {
	return s.Name + "|" + string(s.Category)
}
