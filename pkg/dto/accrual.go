package dto

import "github.com/rajankumarrkr/tradeIndia/internal/domain"

/**
  {
      "date": "2026-03-14",
      "credited": 120,
      "skipped": 3,
      "failed": 0,
      "commissions": 210,
      "startedAt": "2026-03-14T00:00:00+05:30",
      "finishedAt": "2026-03-14T00:00:04+05:30"
  }
*/

type AccrualReport struct {
	Date        string `json:"date"`
	Credited    int    `json:"credited"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Commissions int    `json:"commissions"`
	StartedAt   string `json:"startedAt,omitempty"`
	FinishedAt  string `json:"finishedAt,omitempty"`
	Error       string `json:"error,omitempty"`
}

func NewAccrualReport(r domain.AccrualReport) AccrualReport {
	return AccrualReport{
		Date:        r.Date.String(),
		Credited:    r.Credited,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		Commissions: r.Commissions,
		StartedAt:   formatTime(r.StartedAt),
		FinishedAt:  formatTime(r.FinishedAt),
	}
}
