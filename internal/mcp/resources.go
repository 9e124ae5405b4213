package mcp

// Resource defines an MCP resource
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceDefinitions lists all available resources
var ResourceDefinitions = []Resource{
	{
		URI:         "scout://stats",
		Name:        "Pipeline Summary",
		Description: "Discovered, verified and graded candidate counts with the last run",
		MimeType:    "text/plain",
	},
	{
		URI:         "scout://verdicts/green",
		Name:        "Green List",
		Description: "Candidates graded Great or Good, in consolidation order",
		MimeType:    "text/plain",
	},
	{
		URI:         "scout://verdicts/pending",
		Name:        "Pending Candidates",
		Description: "Promising candidates with no second-pass evidence yet",
		MimeType:    "text/plain",
	},
}

// resourcesListResult is the response for resources/list
type resourcesListResult struct {
	Resources []Resource `json:"resources"`
}

// readResourceParams is the params for resources/read
type readResourceParams struct {
	URI string `json:"uri"`
}

// readResourceResult is the response for resources/read
type readResourceResult struct {
	Contents []resourceContent `json:"contents"`
}

type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}
