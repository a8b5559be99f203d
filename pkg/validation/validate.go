// Package validation checks the structural soundness of a workflow graph
// before save or test runs. It is stateless: the same snapshot always
// yields the same result.
package validation

import (
	"fmt"

	"github.com/loadsmith/cargoflow/pkg/models"
)

// Result accumulates every violated rule; rules are never short-circuited
// so the user sees the full list at once.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Validate runs the structural rules over a node snapshot:
//
//  1. at least one trigger node
//  2. at least one action node
//  3. every node configured, reported as one aggregate message so the
//     error list stays bounded regardless of graph size
//
// Connectivity is deliberately not checked: an action unreachable from any
// trigger is treated as valid.
func Validate(nodes []*models.Node) Result {
	var errs []string

	triggers := 0
	actions := 0
	unconfigured := 0

	for _, n := range nodes {
		switch n.Kind {
		case models.KindTrigger:
			triggers++
		case models.KindAction:
			actions++
		}

		if !n.IsConfigured {
			unconfigured++
		}
	}

	if triggers == 0 {
		errs = append(errs, "workflow must contain at least one trigger node")
	}

	if actions == 0 {
		errs = append(errs, "workflow must contain at least one action node")
	}

	if unconfigured > 0 {
		errs = append(errs, fmt.Sprintf("%d node(s) are not configured", unconfigured))
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}
