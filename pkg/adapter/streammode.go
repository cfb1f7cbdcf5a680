package adapter

import "github.com/digitallysavvy/go-ai-mediator/pkg/ir"

// ApplyStreamMode rewrites a sequence of delta-mode content chunks into
// accumulated mode by threading a running total through Accumulated.
// Non-content chunks (start/metadata/done/error) pass through
// unchanged. Backends always produce delta chunks internally; the
// bridge calls this when the caller asked for StreamModeAccumulated.
func ApplyStreamMode(chunks []ir.StreamChunk, mode ir.StreamMode) []ir.StreamChunk {
	if mode != ir.StreamModeAccumulated {
		return chunks
	}
	out := make([]ir.StreamChunk, len(chunks))
	var running string
	for i, c := range chunks {
		if c.Type == ir.ChunkContent {
			running += c.Delta
			c.Accumulated = running
		}
		out[i] = c
	}
	return out
}
