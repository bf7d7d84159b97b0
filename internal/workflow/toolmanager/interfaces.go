package toolmanager

// describer is implemented by handlers that can render their arguments for display.
// tool.HandlerFunc implements it via the request's String method.
type describer interface {
	Describe(args map[string]any) string
}
