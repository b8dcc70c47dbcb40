package timesheet

import (
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// transitions is the entry lifecycle table. Approved is terminal;
// rejected re-enters the editable path. A rejected entry may also be
// resubmitted directly when a whole week is submitted at once.
var transitions = map[models.EntryStatus][]models.EntryStatus{
	models.EntryStatusDraft:     {models.EntryStatusSubmitted},
	models.EntryStatusSubmitted: {models.EntryStatusApproved, models.EntryStatusRejected},
	models.EntryStatusRejected:  {models.EntryStatusDraft, models.EntryStatusSubmitted},
	models.EntryStatusApproved:  nil,
}

// CanTransition reports whether an entry may move from one status to
// another under normal flow.
func CanTransition(from, to models.EntryStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
