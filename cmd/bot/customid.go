package main

import "strings"

// Component and modal custom IDs. IDs with an argument are "prefix:argument" so every control
// carries its own state and keeps working after a restart.
const (
	customIDSeparator = ":"

	// CustomIDTicketOpen is a panel button, the argument is the panel key.
	CustomIDTicketOpen = "ticket_open"

	// CustomIDTicketReason is the reason modal, the argument is the panel key.
	CustomIDTicketReason = "ticket_reason"

	CustomIDTicketClaim       = "ticket_claim"
	CustomIDTicketClose       = "ticket_close"
	CustomIDTicketCloseReason = "ticket_close_reason"

	// CustomIDTicketCloseSubmit is the close reason modal.
	CustomIDTicketCloseSubmit = "ticket_close_submit"

	// CustomIDTicketCloseConfirm and CustomIDTicketCloseCancel answer a close prompt, the argument
	// is the prompt ID.
	CustomIDTicketCloseConfirm = "ticket_close_confirm"
	CustomIDTicketCloseCancel  = "ticket_close_cancel"

	// CustomIDMultipanelSelect is the multipanel select menu, the argument is the prompt ID.
	CustomIDMultipanelSelect = "multipanel_select"

	// CustomIDPanelDescription is the panel description modal, the argument is the panel key.
	CustomIDPanelDescription = "panel_description"

	// CustomIDTrain and CustomIDDismiss are the training request buttons, the argument is the
	// training ID.
	CustomIDTrain   = "ai_train"
	CustomIDDismiss = "ai_dismiss"

	// CustomIDTrainSubmit is the training modal, the argument is the training ID.
	CustomIDTrainSubmit = "ai_train_submit"

	// Text input IDs inside modals.
	inputReason      = "reason"
	inputDescription = "description"
	inputKeywords    = "keywords"
	inputResponse    = "response"
)

// splitCustomID splits "prefix:argument". IDs without a separator have an empty argument.
func splitCustomID(id string) (prefix, arg string) {
	prefix, arg, _ = strings.Cut(id, customIDSeparator)
	return prefix, arg
}

// joinCustomID builds "prefix:argument".
func joinCustomID(prefix, arg string) string {
	return prefix + customIDSeparator + arg
}
