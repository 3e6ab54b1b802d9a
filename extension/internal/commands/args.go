package commands

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/types"
)

// Arg returns the i-th argument, or nil if it was not given.
func Arg(args []interface{}, i int) interface{} {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

// StringArg returns the i-th argument as a string. Missing and null arguments yield "".
func StringArg(args []interface{}, i int) (string, error) {
	switch v := Arg(args, i).(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: argument %d must be a string, got %T", types.ErrInvalidArgument, i, v)
	}
}

// IntArg returns the i-th argument as an integer. Numeric strings are parsed the way
// leading-integer parsers do: leading whitespace is skipped and trailing garbage is ignored.
func IntArg(args []interface{}, i int) (int, bool) {
	switch v := Arg(args, i).(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(math.Trunc(v)), true
	case json.Number:
		return parseInt(v.String())
	case string:
		return parseInt(v)
	default:
		return 0, false
	}
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// RangeArg decodes a {start, end} object.
func RangeArg(v interface{}) (notebook.Range, bool) {
	switch r := v.(type) {
	case notebook.Range:
		return r, true
	case map[string]interface{}:
		start, startOk := IntArg([]interface{}{r["start"]}, 0)
		end, endOk := IntArg([]interface{}{r["end"]}, 0)
		return notebook.Range{Start: start, End: end}, startOk && endOk
	default:
		return notebook.Range{}, false
	}
}
