package catalog

import (
	"fmt"
	"log"
	"strings"
)

// PrintItems writes one line per item. outputFlags selects fields:
// 'i' id, 'n' name, 'c' main category, 's' effective subcategory, 'u' image URL.
func PrintItems(items []Item, prefix, outputFlags, delimiter string) {
	for _, it := range items {
		line := createLine(it, outputFlags, delimiter)
		if len(line) > 0 {
			fmt.Println(prefix + line)
		}
	}
}

func createLine(it Item, outputFlags, delimiter string) string {
	var line string
	for _, f := range outputFlags {
		switch f {
		case 'i':
			line += it.ID + delimiter
		case 'n':
			line += it.Name + delimiter
		case 'c':
			line += it.Category + delimiter
		case 's':
			line += it.EffectiveSubCategory() + delimiter
		case 'u':
			line += it.ImageURL + delimiter
		default:
			log.Fatal("Invalid print flag")
		}
	}
	return strings.TrimSuffix(line, delimiter)
}
