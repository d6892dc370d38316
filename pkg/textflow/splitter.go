package textflow

import "regexp"

var sentenceBreak = regexp.MustCompile(`[.\n]+`)

// Split breaks text on runs of periods and newlines and returns one
// title-only node per non-blank segment, in order. It never fails.
func Split(text string) NodeSequence {
	var nodes NodeSequence
	for _, seg := range sentenceBreak.Split(text, -1) {
		n, err := NewFlowNode(seg, "")
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}
