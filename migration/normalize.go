package migration

import "github.com/SusheelSathyaraj/TableMigrator/database"

// NormalizeValue converts raw bytes from the source driver. A single byte is a
// BIT(1)-style flag and becomes a bool; longer values are decoded as text.
// Note that any genuine one-byte binary or text value is reinterpreted as a bool too.
func NormalizeValue(v interface{}) interface{} {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if len(b) == 1 {
		return b[0] != 0
	}
	return string(b)
}

// NormalizeRows applies NormalizeValue to every field, in place.
func NormalizeRows(rows []database.Row) {
	for _, row := range rows {
		for k, v := range row {
			row[k] = NormalizeValue(v)
		}
	}
}
