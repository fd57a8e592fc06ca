package lightspeed

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Params holds query parameters for a resource call. A value can be a plain
// literal or a Filter built with Op.
type Params map[string]interface{}

// Filter is an operator-tagged parameter value, e.g. ["><", start, end].
type Filter []interface{}

// Op builds a Filter. Valid operators are "=", "<", ">" and "><" (between).
func Op(operator string, values ...interface{}) Filter {
	f := make(Filter, 0, len(values)+1)
	f = append(f, operator)
	return append(f, values...)
}

// Encode normalizes params into URL query values. Timestamps serialize to
// ISO-8601, Filters and plain sequences collapse to a single comma-joined
// string, everything else passes through via fmt.
func (p Params) Encode() url.Values {
	values := url.Values{}
	for key, value := range p {
		values.Set(key, encodeValue(value))
	}
	return values
}

func encodeValue(value interface{}) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case Filter:
		return joinElements(v)
	case []interface{}:
		return joinElements(v)
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

func joinElements(elements []interface{}) string {
	parts := make([]string, 0, len(elements))
	for _, e := range elements {
		parts = append(parts, encodeValue(e))
	}
	return strings.Join(parts, ",")
}
