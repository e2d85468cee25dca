// Package widgets provides concrete elements to display in a Repeater or a
// Panel.
//
// The elements are small: a fixed-size box, a text block
// measured with a bitmap font face, and a Panel that hosts a layout over a
// fixed list of children. A Panel hands its layout a non-virtualizing
// context, so the same StackLayout or FlowLayout that virtualizes a list in a
// Repeater lays out every child of a Panel.
//
// # Item templates
//
// Widgets that implement layout.DataBinder can be used as item templates
// directly:
//
//	factory := recycle.NewFactory(map[string]recycle.Template{
//	    "row": recycle.TemplateFunc(func() layout.Element {
//	        return widgets.NewTextBlock("")
//	    }),
//	})
//
// TextBlock displays fmt.Sprint of the bound item.
//
// # Scrolling
//
// A ScrollView hosts a Repeater the way a scrolling viewer does: it measures
// the repeater unbounded along the scroll axis, turns its offset into the
// repeater's visible window and follows the repeater's viewport shifts.
package widgets
