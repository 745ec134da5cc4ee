package observability

import "time"

// ObserveMailJob records one mail job execution. result is one of
// done|skipped|retry|failed.
func (p *Prom) ObserveMailJob(kind, result string, started time.Time) {
	p.MailJobResults.WithLabelValues(kind, result).Inc()
	p.MailJobDuration.WithLabelValues(kind, result).Observe(time.Since(started).Seconds())
}
