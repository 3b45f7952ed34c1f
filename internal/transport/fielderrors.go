package transport

import (
	"fmt"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
)

// NormalizeFieldErrors folds the three error-payload shapes the server is
// known to produce into the canonical map form:
//
//	map of field → list of messages   kept as-is
//	flat list of messages             bucketed under "general"
//	single string                     bucketed under "general"
//
// Downstream code only ever sees the map form.
func NormalizeFieldErrors(raw any) map[string][]string {
	out := map[string][]string{}

	switch v := raw.(type) {
	case map[string]any:
		for field, val := range v {
			out[field] = asMessages(val)
		}
	case []any:
		out[common.GeneralErrorKey] = asMessages(v)
	case string:
		out[common.GeneralErrorKey] = []string{v}
	case nil:
		// no payload; leave empty
	default:
		out[common.GeneralErrorKey] = []string{fmt.Sprint(v)}
	}

	return out
}

func asMessages(val any) []string {
	switch v := val.(type) {
	case []any:
		msgs := make([]string, 0, len(v))
		for _, item := range v {
			msgs = append(msgs, fmt.Sprint(item))
		}
		return msgs
	case string:
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}
