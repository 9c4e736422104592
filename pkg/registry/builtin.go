package registry

// GatherIntelligence is the built-in description of the gather-intelligence
// task, used when no registry file is configured.
func GatherIntelligence() Activity {
	return Activity{
		ID:                   "gather-intelligence",
		DisplayName:          "Gather Intelligence",
		Description:          "Classifies a free-text command, queries the matching data sources and renders an intelligence summary",
		Category:             "intelligence",
		Version:              "1.0.0",
		TaskType:             "gather-intelligence",
		ImplementationStatus: "completed",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"command"},
			"properties": map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "Person research, company leads or URL analysis request",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "text (default), json or markdown",
				},
			},
		},
		OutputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"runId", "intent", "target", "report"},
			"properties": map[string]interface{}{
				"runId":  map[string]interface{}{"type": "string"},
				"intent": map[string]interface{}{"type": "string", "enum": []interface{}{"url", "company", "person"}},
				"target": map[string]interface{}{"type": "string"},
				"report": map[string]interface{}{"type": "string"},
			},
		},
		ErrorCodes: []string{
			"INVALID_INPUT",
			"INVALID_OUTPUT_FORMAT",
			"LLM_TIMEOUT",
			"LLM_SYNTHESIS_FAILED",
			"INTELLIGENCE_GATHERING_FAILED",
		},
		Timeout:   "60s",
		Retries:   3,
		Workflows: []string{"lead-research"},
		Tags:      []string{"intelligence", "leads", "osint"},
	}
}

// Builtin returns a registry holding only the built-in activities.
func Builtin() *ActivityRegistry {
	return &ActivityRegistry{
		Version:    "1.0.0",
		Activities: []Activity{GatherIntelligence()},
	}
}
