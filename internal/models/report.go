package models

import "time"

// AccountResult is the outcome of one account's sync within a run.
type AccountResult struct {
	AccountKey   string        `json:"account_key"`
	VideosSynced int           `json:"videos_synced"`
	Err          error         `json:"-"`
	ErrorMessage string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Succeeded reports whether the account completed, including partial
// completion after a terminal remote rejection.
func (r AccountResult) Succeeded() bool {
	return r.Err == nil
}

// SyncReport aggregates one orchestrated run over a set of accounts.
// A run never fails as a whole; failures surface only as Succeeded < Total.
type SyncReport struct {
	RunID      string          `json:"run_id"`
	Succeeded  int             `json:"succeeded"`
	Total      int             `json:"total"`
	Videos     int             `json:"videos_synced"`
	Results    []AccountResult `json:"results"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// FailedKeys returns the account keys that did not complete.
func (r *SyncReport) FailedKeys() []string {
	var keys []string
	for _, res := range r.Results {
		if !res.Succeeded() {
			keys = append(keys, res.AccountKey)
		}
	}
	return keys
}
