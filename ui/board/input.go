package board

import (
	"plm-whiteboard/internal/tool"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Modifiers converts fyne modifier flags. Super counts as Ctrl.
func Modifiers(m fyne.KeyModifier) tool.Modifiers {
	return tool.Modifiers{
		Shift: m&fyne.KeyModifierShift != 0,
		Ctrl:  m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0,
		Alt:   m&fyne.KeyModifierAlt != 0,
	}
}

// Button converts a fyne mouse button.
func Button(b desktop.MouseButton) tool.Button {
	switch {
	case b&desktop.MouseButtonTertiary != 0:
		return tool.ButtonMiddle
	case b&desktop.MouseButtonSecondary != 0:
		return tool.ButtonSecondary
	default:
		return tool.ButtonPrimary
	}
}

// ShortcutKey converts a shortcut to the key event the machine expects.
func ShortcutKey(s fyne.Shortcut) (tool.KeyEvent, bool) {
	switch sc := s.(type) {
	case *desktop.CustomShortcut:
		return tool.KeyEvent{Key: tool.Key(sc.KeyName), Mods: Modifiers(sc.Modifier)}, true
	case *fyne.ShortcutSelectAll:
		return tool.KeyEvent{Key: tool.KeyA, Mods: tool.Modifiers{Ctrl: true}}, true
	}
	return tool.KeyEvent{}, false
}

// DesktopCursor picks the closest fyne cursor.
func DesktopCursor(c tool.Cursor) desktop.Cursor {
	switch c {
	case tool.CursorCrosshair, tool.CursorRotate:
		return desktop.CrosshairCursor
	case tool.CursorText:
		return desktop.TextCursor
	case tool.CursorMove, tool.CursorGrab:
		return desktop.PointerCursor
	case tool.CursorResize:
		return desktop.HResizeCursor
	default:
		return desktop.DefaultCursor
	}
}
