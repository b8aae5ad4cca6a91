package internal

import (
	"context"

	"go.uber.org/zap"
)

// Classifier produces a higher-accuracy partial extraction for one
// email. Implementations may return (nil, nil) when the email does
// not look subscription-related.
type Classifier interface {
	Detect(ctx context.Context, email EmailRecord) (*AIResult, error)
}

// SkippedEmail records one email dropped from the batch and why.
type SkippedEmail struct {
	From    string
	Subject string
	Err     error
}

// Report summarizes one batch run.
type Report struct {
	Subscriptions      []Subscription
	Processed          int
	Skipped            []SkippedEmail
	ClassifierFailures int
}

// Detector runs the extraction pipeline over a batch of emails.
type Detector struct {
	classifier Classifier // nil disables classifier refinement
	cfg        *Config
	log        *zap.Logger
}

func NewDetector(classifier Classifier, cfg *Config, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{classifier: classifier, cfg: cfg, log: log}
}

// ProcessEmails runs every email through the extraction pipeline and
// returns the deduplicated subscription list. Emails are processed
// strictly in order, one at a time. A failure on one email (bad date,
// classifier breakage) never aborts the batch: bad dates skip the
// email, classifier errors degrade it to rule-only extraction.
func (d *Detector) ProcessEmails(ctx context.Context, emails []EmailRecord) Report {
	var report Report
	var subs []Subscription

	for i, email := range emails {
		cleaned := CleanEmail(email)

		var ai *AIResult
		if d.classifier != nil {
			result, err := d.classifier.Detect(ctx, cleaned)
			if err != nil {
				report.ClassifierFailures++
				d.log.Warn("classifier call failed, falling back to rules",
					zap.String("from", email.From),
					zap.Error(err))
			} else {
				ai = result
			}
		}

		sub, err := BuildSubscription(cleaned, ai)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEmail{
				From:    email.From,
				Subject: email.Subject,
				Err:     err,
			})
			d.log.Warn("skipping email",
				zap.String("from", email.From),
				zap.String("subject", email.Subject),
				zap.Error(err))
			continue
		}

		subs = append(subs, sub)
		report.Processed++
		d.log.Debug("processed email",
			zap.Int("done", i+1),
			zap.Int("total", len(emails)),
			zap.String("name", sub.Name))
	}

	// Group aliases and category overrides change the identity key,
	// so they must run before deduplication.
	subs = d.cfg.ApplyGroups(subs)
	subs = d.cfg.ApplyCategoryOverrides(subs)
	subs = Deduplicate(subs)
	subs = FilterByExclusions(subs, d.cfg)

	report.Subscriptions = subs
	return report
}
