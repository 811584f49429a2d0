package llm

// Kind selects how a model is invoked.
type Kind int

const (
	// KindCompletion models receive a single raw prompt string.
	KindCompletion Kind = iota
	// KindChat models receive a role-tagged system+user exchange.
	KindChat
)

// DefaultModel answers move requests for both colors until changed.
const DefaultModel = "gemini-2.0-flash-001"

// Model describes a selectable model variant.
type Model struct {
	ID   string
	Kind Kind
}

// registry is the single place that knows which invocation shape a model
// expects. gemini-1.0-pro predates system instructions and is kept as the
// completion-style variant.
var registry = []Model{
	{ID: "gemini-2.0-flash-001", Kind: KindChat},
	{ID: "gemini-2.0-flash-lite-001", Kind: KindChat},
	{ID: "gemini-1.5-flash-002", Kind: KindChat},
	{ID: "gemini-1.5-pro-002", Kind: KindChat},
	{ID: "gemini-1.0-pro", Kind: KindCompletion},
}

// Models returns the selectable models in display order.
func Models() []Model {
	out := make([]Model, len(registry))
	copy(out, registry)
	return out
}

// ModelIDs returns the selectable model identifiers in display order.
func ModelIDs() []string {
	ids := make([]string, len(registry))
	for i, m := range registry {
		ids[i] = m.ID
	}
	return ids
}

// KindOf reports the invocation variant for a model identifier. Unknown
// identifiers are treated as completion-style.
func KindOf(id string) Kind {
	for _, m := range registry {
		if m.ID == id {
			return m.Kind
		}
	}
	return KindCompletion
}
