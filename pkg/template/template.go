// Package template renders action parameters against the execution context,
// so an email body can reference "{{.event.load.id}}" or a prior action's
// output via "{{.actions.node_id.field}}".
package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/loadsmith/cargoflow/pkg/models"
)

// RenderWithExecution renders input with the execution's accumulated context
// as the data root.
func RenderWithExecution(input string, execution *models.Execution) (any, error) {
	data := map[string]any{}
	for k, v := range execution.Context {
		data[k] = v
	}

	data["execution"] = map[string]any{
		"id":          execution.ID,
		"workflow_id": execution.WorkflowID,
	}

	return Render(input, data)
}

// Render executes templateStr against data. Output that parses as JSON, a
// number, or a boolean is returned typed; everything else comes back as a
// string.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("params").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any
		if err := json.Unmarshal([]byte(result), &jsonResult); err == nil {
			return jsonResult, nil
		}
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

// RenderParams renders every string value in params, leaving other types
// untouched. Nested maps are rendered recursively.
func RenderParams(params map[string]any, execution *models.Execution) (map[string]any, error) {
	rendered := make(map[string]any, len(params))

	for key, value := range params {
		switch v := value.(type) {
		case string:
			out, err := RenderWithExecution(v, execution)
			if err != nil {
				return nil, fmt.Errorf("param %q: %w", key, err)
			}

			rendered[key] = out
		case map[string]any:
			out, err := RenderParams(v, execution)
			if err != nil {
				return nil, fmt.Errorf("param %q: %w", key, err)
			}

			rendered[key] = out
		default:
			rendered[key] = value
		}
	}

	return rendered, nil
}
