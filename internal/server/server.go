package server

import (
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// Stores bundles the storage interfaces the engine needs.
type Stores struct {
	Organizations store.OrganizationStore
	Profiles      store.ProfileStore
	Projects      store.ProjectStore
	Entries       store.TimeEntryStore
}

// Services wires the engine together over a set of stores.
type Services struct {
	Memberships *MembershipService
	Entries     *EntryService
	Approvals   *ApprovalService
	Payroll     *PayrollService
	Invites     *InviteService
	Profiles    *ProfileService
	Projects    *ProjectService
}

// NewServices constructs all engine services over the given stores.
func NewServices(stores Stores) *Services {
	memberships := NewMembershipService(stores.Projects)

	return &Services{
		Memberships: memberships,
		Entries:     NewEntryService(stores.Entries, stores.Profiles, memberships),
		Approvals:   NewApprovalService(stores.Entries, stores.Profiles),
		Payroll:     NewPayrollService(stores.Entries, stores.Profiles, stores.Projects),
		Invites:     NewInviteService(stores.Profiles, stores.Projects),
		Profiles:    NewProfileService(stores.Profiles),
		Projects:    NewProjectService(stores.Projects, stores.Profiles),
	}
}
