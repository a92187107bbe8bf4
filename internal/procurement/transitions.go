package procurement

import (
	"fmt"
	"strings"
)

// Action is an operator action on a procurement document.
type Action string

const (
	ActionSubmit       Action = "submit"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionConvertToRFQ Action = "convert_to_rfq"
	ActionSend         Action = "send"
	ActionSelect       Action = "select"
	ActionCreatePO     Action = "create_po"
	ActionReceive      Action = "receive"
)

var prActions = map[PRStatus][]Action{
	PRStatusDraft:     {ActionSubmit, ActionEdit, ActionDelete},
	PRStatusSubmitted: {ActionApprove, ActionReject},
	PRStatusApproved:  {ActionConvertToRFQ},
}

var rfqActions = map[RFQStatus][]Action{
	RFQStatusDraft: {ActionSend},
}

var quotationActions = map[QuotationStatus][]Action{
	QuotationStatusDraft:     {ActionSubmit},
	QuotationStatusSubmitted: {ActionSelect, ActionReject},
	QuotationStatusSelected:  {ActionCreatePO},
}

// PRActions lists the actions available for a requisition in status.
func PRActions(status PRStatus) []Action {
	return clone(prActions[status])
}

// RFQActions lists the actions available for an RFQ in status.
func RFQActions(status RFQStatus) []Action {
	return clone(rfqActions[status])
}

// QuotationActions lists the actions available for a quotation in status.
func QuotationActions(status QuotationStatus) []Action {
	return clone(quotationActions[status])
}

// POActions lists the actions available for an order. Any order that is not
// closed can still receive goods.
func POActions(po PurchaseOrder) []Action {
	if po.Pending() && po.Status != POStatusCancelled {
		return []Action{ActionReceive}
	}
	return []Action{}
}

func allowed(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

func clone(actions []Action) []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// StateError reports an action that the document's status does not offer.
type StateError struct {
	Document string
	Number   string
	Action   Action
	Status   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("procurement: %s %s: %s not allowed in status %s", e.Document, e.Number, e.Action, e.Status)
}

// Unwrap ties the error to ErrInvalidState.
func (e *StateError) Unwrap() error { return ErrInvalidState }

// UserMessage implements httpx.UserMessager.
func (e *StateError) UserMessage() string {
	verb := strings.ReplaceAll(string(e.Action), "_", " ")
	return fmt.Sprintf("Cannot %s %s %s while it is %s", verb, e.Document, e.Number, strings.ToLower(e.Status))
}

func stateError(document, number string, action Action, status string) error {
	return &StateError{Document: document, Number: number, Action: action, Status: status}
}
