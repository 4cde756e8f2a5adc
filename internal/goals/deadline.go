package goals

import (
	"fmt"

	"github.com/starford/metas/internal/models"
)

// DeadlineState classifies a goal's due date relative to today.
type DeadlineState string

const (
	DeadlineNone    DeadlineState = "none"
	DeadlineOverdue DeadlineState = "overdue"
	DeadlineToday   DeadlineState = "today"
	DeadlineSoon    DeadlineState = "soon"
	DeadlineLater   DeadlineState = "later"
)

// soonWindow is how many days ahead a deadline counts as soon.
const soonWindow = 7

// displayDateLayout is the pt-BR day/month/year format.
const displayDateLayout = "02/01/2006"

// DeadlineInfo is the display label of a due date.
type DeadlineInfo struct {
	State    DeadlineState `json:"state"`
	DaysLeft int           `json:"days_left"`
	Label    string        `json:"label"`
}

// Deadline describes g's due date as seen on day today.
func Deadline(g models.Goal, today models.Date) DeadlineInfo {
	if !g.HasDueDate() {
		return DeadlineInfo{State: DeadlineNone, Label: "Sem prazo"}
	}
	days := today.DaysUntil(*g.DueDate)
	switch {
	case days < 0:
		return DeadlineInfo{State: DeadlineOverdue, DaysLeft: days, Label: "Atrasado"}
	case days == 0:
		return DeadlineInfo{State: DeadlineToday, Label: "Termina hoje"}
	case days <= soonWindow:
		return DeadlineInfo{State: DeadlineSoon, DaysLeft: days, Label: fmt.Sprintf("Faltam %d dias", days)}
	default:
		return DeadlineInfo{State: DeadlineLater, DaysLeft: days, Label: g.DueDate.Format(displayDateLayout)}
	}
}
