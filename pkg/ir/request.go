package ir

// StreamMode selects how StreamChunk.Delta/Accumulated are populated
// when a request is executed in streaming mode.
type StreamMode string

const (
	// StreamModeDelta is the default: each chunk carries only the text
	// produced since the previous chunk.
	StreamModeDelta StreamMode = "delta"
	// StreamModeAccumulated has each chunk carry the full text produced
	// so far, for frontends (or callers) that prefer not to concatenate
	// deltas themselves.
	StreamModeAccumulated StreamMode = "accumulated"
)

// SchemaHint asks the backend to constrain output to a JSON shape, when
// the backend supports it. The mediator does not validate or repair the
// result; it is a passthrough hint.
type SchemaHint struct {
	Name   string
	Schema map[string]any
	Strict bool
}

// Parameters holds the generation controls that are common across
// providers. A nil pointer field means "use the backend's default";
// pointers (rather than zero values) are used throughout so that
// "unset" and "explicitly zero" remain distinguishable.
type Parameters struct {
	Model            string
	Temperature      *float64
	TopP             *float64
	TopK             *int
	MaxTokens        *int
	StopSequences    []string
	Seed             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Tools            []Tool
	ToolChoice       *ToolChoice
}

// ChatRequest is the canonical request shape that a FrontendAdapter
// produces and a BackendAdapter consumes.
type ChatRequest struct {
	Messages   []Message
	Parameters *Parameters
	Stream     bool
	StreamMode StreamMode
	Schema     *SchemaHint
	Metadata   Metadata
}

// SystemText concatenates the text of every leading system message, in
// the order they appear. Most dialects want a single system string;
// ExtractSystemMessages below additionally strips them out of Messages.
func (r ChatRequest) SystemText() string {
	var out string
	for _, m := range r.Messages {
		if m.Role != RoleSystem {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += m.Text()
	}
	return out
}

// Float64Ptr, IntPtr are small helpers for building *Parameters literals
// without a local variable at every call site.
func Float64Ptr(v float64) *float64 { return &v }
func IntPtr(v int) *int             { return &v }
