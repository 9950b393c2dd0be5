package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christian-post/NPC-Escort-Mission/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	key := msg.String()

	// Global quit keys
	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	}

	switch key {
	case "w", "up":
		return core.ActionUp, false
	case "s", "down":
		return core.ActionDown, false
	case "a", "left":
		return core.ActionLeft, false
	case "d", "right":
		return core.ActionRight, false
	case "f12", "`":
		return core.ActionToggleDebug, false
	case "f1", "c":
		return core.ActionToggleCamera, false
	case "enter":
		return core.ActionConfirm, false
	case "b", "esc":
		return core.ActionBack, false
	case "p":
		return core.ActionPause, false
	case "r":
		return core.ActionRestart, false
	}

	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message. Movement
// keys go to held instead, which keeps them down between key repeats.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame, held *HeldKeys) bool {
	action, isQuit := km.MapKey(msg)
	switch {
	case action == core.ActionNone:
	case action.IsMovement() && held != nil:
		held.Press(action)
	default:
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionWatch
	MenuActionRuns
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "a":
		return MenuActionWatch
	case "tab":
		return MenuActionRuns
	case "b", "esc":
		return MenuActionBack
	}

	return MenuActionNone
}

// Terminals report key presses and repeats but never releases. A first
// press holds long enough to bridge the repeat delay; each repeat after
// that only extends the hold briefly.
const (
	firstHoldSeconds  = 0.5
	repeatHoldSeconds = 0.1
)

// HeldKeys emulates key releases for movement keys.
type HeldKeys struct {
	until  map[core.Action]int
	tick   int
	first  int
	repeat int
}

// NewHeldKeys creates a tracker for the given tick rate.
func NewHeldKeys(tickRate int) *HeldKeys {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &HeldKeys{
		until:  make(map[core.Action]int),
		first:  max(1, int(firstHoldSeconds*float64(tickRate))),
		repeat: max(1, int(repeatHoldSeconds*float64(tickRate))),
	}
}

// Press registers a key press. The opposite direction is released.
func (h *HeldKeys) Press(a core.Action) {
	if !a.IsMovement() {
		return
	}
	delete(h.until, opposite(a))

	end := h.tick + h.first
	if prev, ok := h.until[a]; ok {
		end = max(prev, h.tick+h.repeat)
	}
	h.until[a] = end
}

// Held reports whether a is currently considered down.
func (h *HeldKeys) Held(a core.Action) bool {
	end, ok := h.until[a]
	return ok && end > h.tick
}

// Apply sets every held action on frame.
func (h *HeldKeys) Apply(frame *core.InputFrame) {
	for a := range h.until {
		if h.Held(a) {
			frame.Set(a)
		}
	}
}

// Advance moves to the next tick and drops expired keys.
func (h *HeldKeys) Advance() {
	h.tick++
	for a, end := range h.until {
		if end <= h.tick {
			delete(h.until, a)
		}
	}
}

// Release drops every held key.
func (h *HeldKeys) Release() {
	clear(h.until)
}

func opposite(a core.Action) core.Action {
	switch a {
	case core.ActionUp:
		return core.ActionDown
	case core.ActionDown:
		return core.ActionUp
	case core.ActionLeft:
		return core.ActionRight
	case core.ActionRight:
		return core.ActionLeft
	}
	return core.ActionNone
}
