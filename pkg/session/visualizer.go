package session

import (
	"fmt"
	"io"

	"github.com/tgohq/flowgraph/pkg/run"
)

// FprintRun renders the current graph with per-node execution status from
// the tracker. Nodes the run reported but the graph no longer has (deleted
// mid-run, or synthesized from inconsistent events) are listed after the
// graph's own.
func (s *Session) FprintRun(w io.Writer) {
	snap := s.tracker.Snapshot()

	fmt.Fprintf(w, "Run %s [%s]\n", snap.RunID, snap.Status)
	if snap.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", snap.Error)
	}

	fmt.Fprintln(w, "Nodes:")
	seen := make(map[string]bool)
	for _, n := range s.g.Nodes() {
		seen[n.ID] = true
		fmt.Fprintf(w, "  %s %q%s\n", n.Type, n.Label(), nodeStatusSuffix(snap, n.ID))
	}
	for _, id := range snap.Order {
		if seen[id] {
			continue
		}
		rec := snap.Nodes[id]
		fmt.Fprintf(w, "  %s %q (not in graph)%s\n", rec.NodeType, rec.Title, nodeStatusSuffix(snap, id))
	}

	if snap.Status.Terminal() {
		fmt.Fprintf(w, "Finished in %.0fms over %d steps\n", snap.ElapsedMS, snap.TotalSteps)
	}
}

func nodeStatusSuffix(snap *run.Snapshot, id string) string {
	rec, ok := snap.Nodes[id]
	if !ok {
		return ""
	}
	if rec.Status.Terminal() && rec.DurationMS > 0 {
		return fmt.Sprintf("  [%s %.0fms]", rec.Status, rec.DurationMS)
	}
	return fmt.Sprintf("  [%s]", rec.Status)
}
