package goals

import "github.com/starford/metas/internal/models"

// Summary is the dashboard breakdown of a goal collection.
type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`

	CompletedPct  float64 `json:"completed_pct"`
	InProgressPct float64 `json:"in_progress_pct"`
	PendingPct    float64 `json:"pending_pct"`
}

// Summarize counts goals by status. Pending absorbs everything that is
// neither completed nor in progress, so the three counts always add up to
// Total. Percentages are zero for an empty collection.
func Summarize(all []models.Goal) Summary {
	s := Summary{Total: len(all)}
	for _, g := range all {
		switch g.Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusInProgress:
			s.InProgress++
		}
	}
	s.Pending = s.Total - s.Completed - s.InProgress
	if s.Total == 0 {
		return s
	}
	total := float64(s.Total)
	s.CompletedPct = 100 * float64(s.Completed) / total
	s.InProgressPct = 100 * float64(s.InProgress) / total
	s.PendingPct = 100 * float64(s.Pending) / total
	return s
}
