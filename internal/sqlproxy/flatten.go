package sqlproxy

import (
	"encoding/base64"
	"time"
	"unicode/utf8"
)

func toRowResult(raw []any) RowResult {
	row := make(RowResult, len(raw))
	for i, v := range raw {
		row[i] = anyToJSONSafe(v)
	}
	return row
}

// anyToJSONSafe shapes a driver value for JSON. Text and decimals arrive as
// []byte from the SQL Server driver; binary that is not UTF-8 is base64.
func anyToJSONSafe(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return map[string]any{
			"type":   "bytes",
			"base64": base64.StdEncoding.EncodeToString(x),
		}
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
