// Package ui holds the presentation helpers shared by every page: button
// styling, the navigation shell and display formatting.
package ui

import "strings"

// Button variants
const (
	VariantPrimary   = "primary"
	VariantSecondary = "secondary"
	VariantOutline   = "outline"
	VariantText      = "text"
	VariantGradient  = "gradient"
)

// Button sizes
const (
	SizeSmall  = "sm"
	SizeMedium = "md"
	SizeLarge  = "lg"
	SizeIcon   = "icon"
)

var variantClasses = map[string]string{
	VariantPrimary:   "btn-primary",
	VariantSecondary: "btn-secondary",
	VariantOutline:   "btn-outline",
	VariantText:      "btn-text",
	VariantGradient:  "btn-gradient",
}

var sizeClasses = map[string]string{
	SizeSmall:  "btn-sm",
	SizeMedium: "btn-md",
	SizeLarge:  "btn-lg",
	SizeIcon:   "btn-icon",
}

// Button describes a clickable control. It holds no state.
type Button struct {
	Variant   string
	Size      string
	Loading   bool
	FullWidth bool
	Disabled  bool
}

// Classes returns the CSS class list for the button. Unknown variants and
// sizes fall back to primary and md.
func (b Button) Classes() string {
	variant, ok := variantClasses[b.Variant]
	if !ok {
		variant = variantClasses[VariantPrimary]
	}
	size, ok := sizeClasses[b.Size]
	if !ok {
		size = sizeClasses[SizeMedium]
	}

	classes := []string{"btn", variant, size}
	if b.FullWidth {
		classes = append(classes, "btn-block")
	}
	if b.Loading {
		classes = append(classes, "btn-loading")
	}
	if b.Disabled || b.Loading {
		classes = append(classes, "btn-disabled")
	}
	return strings.Join(classes, " ")
}

// Inert reports whether the button should not accept clicks
func (b Button) Inert() bool {
	return b.Disabled || b.Loading
}

// ParseButton builds a Button from template arguments such as
// "outline", "lg", "full", "loading" and "disabled"
func ParseButton(args ...string) Button {
	var b Button
	for _, a := range args {
		switch {
		case a == "full":
			b.FullWidth = true
		case a == "loading":
			b.Loading = true
		case a == "disabled":
			b.Disabled = true
		case variantClasses[a] != "":
			b.Variant = a
		case sizeClasses[a] != "":
			b.Size = a
		}
	}
	return b
}
