// Package execution runs workflows against domain events: it matches
// triggers, walks the node graph, dispatches actions, and suspends on delay
// nodes with durable timers.
package execution

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loadsmith/cargoflow/pkg/models"
)

// ResolvePath walks a dotted path ("load.status", "carrier.rating") through
// nested maps. The second return is false when any segment is missing.
func ResolvePath(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// EvaluateRule applies one condition rule to the event payload. A missing
// field is empty for is_empty/is_not_empty and fails every other operator.
func EvaluateRule(rule models.ConditionRule, data map[string]any) (bool, error) {
	value, found := ResolvePath(data, rule.Field)

	switch rule.Operator {
	case models.OpIsEmpty:
		return !found || isEmpty(value), nil
	case models.OpIsNotEmpty:
		return found && !isEmpty(value), nil
	}

	if !found {
		return false, nil
	}

	switch rule.Operator {
	case models.OpEquals:
		return looseEquals(value, rule.Value), nil
	case models.OpNotEquals:
		return !looseEquals(value, rule.Value), nil
	case models.OpContains:
		return strings.Contains(asString(value), asString(rule.Value)), nil
	case models.OpNotContains:
		return !strings.Contains(asString(value), asString(rule.Value)), nil
	case models.OpGreaterThan, models.OpLessThan, models.OpGreaterThanOrEquals, models.OpLessThanOrEquals:
		left, leftOK := asFloat(value)
		right, rightOK := asFloat(rule.Value)

		if !leftOK || !rightOK {
			return false, nil
		}

		switch rule.Operator {
		case models.OpGreaterThan:
			return left > right, nil
		case models.OpLessThan:
			return left < right, nil
		case models.OpGreaterThanOrEquals:
			return left >= right, nil
		default:
			return left <= right, nil
		}
	default:
		return false, fmt.Errorf("unknown condition operator: %s", rule.Operator)
	}
}

// EvaluateCondition combines all rules with the node's logical operator. An
// empty rule set evaluates to true.
func EvaluateCondition(cfg *models.ConditionConfig, data map[string]any) (bool, error) {
	if len(cfg.Rules) == 0 {
		return true, nil
	}

	for _, rule := range cfg.Rules {
		matched, err := EvaluateRule(rule, data)
		if err != nil {
			return false, err
		}

		if cfg.LogicalOperator == models.LogicalOr && matched {
			return true, nil
		}

		if cfg.LogicalOperator != models.LogicalOr && !matched {
			return false, nil
		}
	}

	return cfg.LogicalOperator != models.LogicalOr, nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// looseEquals compares numerically when both sides coerce to numbers, so a
// JSON 42 matches a configured "42".
func looseEquals(left, right any) bool {
	if lf, ok := asFloat(left); ok {
		if rf, ok := asFloat(right); ok {
			return lf == rf
		}
	}

	return asString(left) == asString(right)
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		return f, err == nil
	default:
		return 0, false
	}
}
