// Package workflow implements the two-step upload and delete flow: an action
// is staged, shown to the user, and only touches storage once confirmed.
// At most one confirmed action runs per document slot at a time.
package workflow

import (
	"fmt"

	"github.com/google/uuid"
)

// State is a step of the upload/delete state machine.
type State string

const (
	StateIdle                 State = "idle"
	StateFileSelected         State = "file_selected"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateUploading            State = "uploading"
	StateDeleting             State = "deleting"
	StateSuccess              State = "success"
	StateFailed               State = "failed"
)

// Kind is the operation a ticket will perform once confirmed.
type Kind string

const (
	KindUpload Kind = "upload"
	KindDelete Kind = "delete"
)

var transitions = map[State][]State{
	StateIdle:                 {StateFileSelected, StateAwaitingConfirmation},
	StateFileSelected:         {StateAwaitingConfirmation, StateIdle},
	StateAwaitingConfirmation: {StateUploading, StateDeleting, StateIdle},
	StateUploading:            {StateSuccess, StateFailed},
	StateDeleting:             {StateSuccess, StateFailed},
	StateSuccess:              {StateIdle},
	StateFailed:               {StateIdle},
}

// CanTransition reports whether the machine may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a ticket's life.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed || s == StateIdle
}

// runningState is the state a confirmed ticket of kind k runs in.
func runningState(k Kind) State {
	if k == KindDelete {
		return StateDeleting
	}
	return StateUploading
}

// KYCSlotKey identifies the single KYC document an owner may hold for slot.
func KYCSlotKey(ownerID uuid.UUID, slot string) string {
	return fmt.Sprintf("kyc:%s:%s", ownerID, slot)
}

// FinancialSlotKey identifies uploads of one document type for one year.
func FinancialSlotKey(ownerID uuid.UUID, year, docType string) string {
	return fmt.Sprintf("financial:%s:%s:%s", ownerID, year, docType)
}

// DocumentKey identifies an existing document targeted by a delete.
func DocumentKey(domain string, ownerID, docID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:doc:%s", domain, ownerID, docID)
}
