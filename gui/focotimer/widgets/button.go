package widgets

import (
	"image/color"

	"github.com/d093w1z/gio/layout"
	"github.com/d093w1z/gio/unit"
	"github.com/d093w1z/gio/widget"
	"github.com/d093w1z/gio/widget/material"
)

var (
	buttonColor   = color.NRGBA{R: 0x3D, G: 0x3D, B: 0x3D, A: 0xFF}
	disabledColor = color.NRGBA{R: 0x1E, G: 0x1E, B: 0x1E, A: 0xFF}
)

// Button lays out an icon button. Clicks on a disabled button are swallowed.
func Button(th *material.Theme, inset unit.Dp, label string, icon []byte, btnWidget *widget.Clickable, enabled bool, onClick func()) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {

		startIcon, _ := widget.NewIcon(icon)
		btn := material.IconButton(th, btnWidget, startIcon, label)
		btn.Background = buttonColor
		if !enabled {
			btn.Background = disabledColor
		}
		btn.Inset = layout.UniformInset(inset)
		if btnWidget.Clicked(gtx) && enabled {
			onClick()
		}
		return btn.Layout(gtx)
	})
}
