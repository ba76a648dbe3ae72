package barcode

import (
	"strings"

	"github.com/google/uuid"
)

// NewBox generates a unique box barcode, e.g. "BOX-9F86D081884C".
func NewBox() string {
	return "BOX-" + short()
}

// NewPallet generates a unique pallet barcode, e.g. "PAL-0E3B4A1C77D2".
func NewPallet() string {
	return "PAL-" + short()
}

func short() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:12])
}
