package bot

import (
	"context"
	"strings"
)

// State is the conversation step a user is in.
type State int

const (
	StateIdle State = iota
	StateAwaitName
	StateAwaitAge
	StateAwaitLastPeriodDate
	StateAwaitPeriodDuration
	StateAwaitCycleLength
	StateAwaitNotificationChoice
	StateMainMenu
	StateAwaitEnergyLevel
	StateEditLastPeriodDate
	StateEditPeriodDuration
	StateEditCycleLength
	stateCount
)

var stateNames = [stateCount]string{
	StateIdle:                    "idle",
	StateAwaitName:               "await_name",
	StateAwaitAge:                "await_age",
	StateAwaitLastPeriodDate:     "await_last_period_date",
	StateAwaitPeriodDuration:     "await_period_duration",
	StateAwaitCycleLength:        "await_cycle_length",
	StateAwaitNotificationChoice: "await_notification_choice",
	StateMainMenu:                "main_menu",
	StateAwaitEnergyLevel:        "await_energy_level",
	StateEditLastPeriodDate:      "edit_last_period_date",
	StateEditPeriodDuration:      "edit_period_duration",
	StateEditCycleLength:         "edit_cycle_length",
}

func (state State) String() string {
	if state < 0 || state >= stateCount {
		return "unknown"
	}
	return stateNames[state]
}

// registering reports whether state belongs to the /start registration flow.
func (state State) registering() bool {
	return state >= StateAwaitName && state <= StateAwaitCycleLength
}

// InputKind classifies an incoming message before it is dispatched.
type InputKind int

const (
	InputText InputKind = iota
	InputStart
	InputCancel
	InputUpdatePeriod
	InputUpdateDuration
	InputUpdateCycle
	InputNotifications
	InputToken
	InputUnknownCommand
	inputKindCount
)

var commandKinds = map[string]InputKind{
	"start":           InputStart,
	"cancel":          InputCancel,
	"update_period":   InputUpdatePeriod,
	"update_duration": InputUpdateDuration,
	"update_cycle":    InputUpdateCycle,
	"notifications":   InputNotifications,
	"token":           InputToken,
}

// Input is one message from a user.
type Input struct {
	UserID       int64
	Kind         InputKind
	Text         string
	LanguageCode string
}

// ParseInput classifies text as a known command, an unknown command or free text.
func ParseInput(userID int64, text string, languageCode string) Input {
	trimmed := strings.TrimSpace(text)
	input := Input{UserID: userID, Kind: InputText, Text: trimmed, LanguageCode: languageCode}
	if !strings.HasPrefix(trimmed, "/") {
		return input
	}

	command := strings.Fields(trimmed[1:])
	if len(command) == 0 {
		input.Kind = InputUnknownCommand
		return input
	}
	name := strings.ToLower(command[0])
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	if kind, ok := commandKinds[name]; ok {
		input.Kind = kind
	} else {
		input.Kind = InputUnknownCommand
	}
	return input
}

// transition handles one input in one state and returns the reply and the next state.
type transition func(dialog *Dialog, ctx context.Context, session *session, input Input) (Reply, State)

// commandRow fills every command column with the global command handlers, leaving only free
// text state specific.
func commandRow(onText transition) [inputKindCount]transition {
	return [inputKindCount]transition{
		InputText:           onText,
		InputStart:          (*Dialog).startRegistration,
		InputCancel:         (*Dialog).cancel,
		InputUpdatePeriod:   (*Dialog).beginEditLastPeriodDate,
		InputUpdateDuration: (*Dialog).beginEditPeriodDuration,
		InputUpdateCycle:    (*Dialog).beginEditCycleLength,
		InputNotifications:  (*Dialog).toggleNotifications,
		InputToken:          (*Dialog).issueToken,
		InputUnknownCommand: (*Dialog).unknownCommand,
	}
}

var transitions = [stateCount][inputKindCount]transition{
	StateIdle:                    commandRow((*Dialog).handleIdleText),
	StateAwaitName:               commandRow((*Dialog).handleName),
	StateAwaitAge:                commandRow((*Dialog).handleAge),
	StateAwaitLastPeriodDate:     commandRow((*Dialog).handleLastPeriodDate),
	StateAwaitPeriodDuration:     commandRow((*Dialog).handlePeriodDuration),
	StateAwaitCycleLength:        commandRow((*Dialog).handleCycleLength),
	StateAwaitNotificationChoice: commandRow((*Dialog).handleNotificationChoice),
	StateMainMenu:                commandRow((*Dialog).handleMenuSelection),
	StateAwaitEnergyLevel:        commandRow((*Dialog).handleEnergyLevel),
	StateEditLastPeriodDate:      commandRow((*Dialog).handleEditLastPeriodDate),
	StateEditPeriodDuration:      commandRow((*Dialog).handleEditPeriodDuration),
	StateEditCycleLength:         commandRow((*Dialog).handleEditCycleLength),
}
