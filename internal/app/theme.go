package app

import (
	"image/color"

	"plm-whiteboard/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// WhiteboardTheme tints the default theme with the selection color.
type WhiteboardTheme struct{}

var _ fyne.Theme = (*WhiteboardTheme)(nil)

func (t *WhiteboardTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.Selection
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(colorutil.Selection, 0.3)
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *WhiteboardTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *WhiteboardTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *WhiteboardTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3 // compact toolbar
	default:
		return theme.DefaultTheme().Size(name)
	}
}
