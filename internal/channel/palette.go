package channel

import "fmt"

// PaletteEntry pairs a background colour with a readable text colour.
type PaletteEntry struct {
	Name         string
	ColorHex     string
	TextColorHex string
}

// Palette is the fixed set of channel colours, in display order.
// Default channel assignment cycles through this list.
var Palette = []PaletteEntry{
	{Name: "White", ColorHex: "#FFFFFF", TextColorHex: "#000000"},
	{Name: "Cyan", ColorHex: "#00BCD4", TextColorHex: "#000000"},
	{Name: "Magenta", ColorHex: "#E91E63", TextColorHex: "#FFFFFF"},
	{Name: "Yellow", ColorHex: "#FFEB3B", TextColorHex: "#000000"},
	{Name: "Red", ColorHex: "#F44336", TextColorHex: "#FFFFFF"},
	{Name: "Green", ColorHex: "#4CAF50", TextColorHex: "#FFFFFF"},
	{Name: "Blue", ColorHex: "#2196F3", TextColorHex: "#FFFFFF"},
	{Name: "Orange", ColorHex: "#FF9800", TextColorHex: "#000000"},
	{Name: "Lavender", ColorHex: "#9575CD", TextColorHex: "#FFFFFF"},
	{Name: "Purple", ColorHex: "#9C27B0", TextColorHex: "#FFFFFF"},
	{Name: "Teal", ColorHex: "#009688", TextColorHex: "#FFFFFF"},
}

// PaletteByName looks up a palette entry by its display name.
func PaletteByName(name string) (PaletteEntry, bool) {
	for _, p := range Palette {
		if p.Name == name {
			return p, true
		}
	}
	return PaletteEntry{}, false
}

// Defaults returns the deterministic default channel set: MaxID channels
// labelled "Channel N" with palette colours assigned by cycling the list.
// Used when the show document is missing or unreadable.
func Defaults() []Channel {
	channels := make([]Channel, 0, MaxID)
	for i := MinID; i <= MaxID; i++ {
		p := Palette[i%len(Palette)]
		channels = append(channels, Channel{
			NumericID:    i,
			Label:        fmt.Sprintf("Channel %d", i),
			ColorName:    p.Name,
			ColorHex:     p.ColorHex,
			TextColorHex: p.TextColorHex,
			Status:       StatusIdle,
		})
	}
	return channels
}
