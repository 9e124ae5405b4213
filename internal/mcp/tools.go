package mcp

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolDefinitions contains all available MCP tools
var ToolDefinitions = []Tool{
	{
		Name:        "list_candidates",
		Description: "List graded investor candidates in consolidation order, optionally filtered by verdict.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"grade": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"great", "good", "pending", "reject", "all"},
					"description": "Filter by verdict. Use 'all' or omit for no filter.",
				},
				"green_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only return Great and Good candidates",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 20)",
				},
			},
		},
	},
	{
		Name:        "get_candidate",
		Description: "Get everything stored about one candidate: verdict, first-pass sightings, second-pass evidence and enrichment rows.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Candidate name (case-insensitive), or part of a name, organization or URL",
				},
			},
			"required": []string{"name"},
		},
	},
	{
		Name:        "search_candidates",
		Description: "Search graded candidates by name, organization or profile URL.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text (case-insensitive partial match)",
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name:        "score_text",
		Description: "Score a search result title and snippet with the first-pass scorer, and with the second-pass scorer when a name is given. Nothing is stored.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Title and snippet text",
				},
				"url": map[string]interface{}{
					"type":        "string",
					"description": "URL the text was found at",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Candidate name for the second pass",
				},
			},
			"required": []string{"text"},
		},
	},
	{
		Name:        "get_stats",
		Description: "Get pipeline statistics: discovered leads, verified names, verdict counts and green-list share.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	},
}
