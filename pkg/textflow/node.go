package textflow

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrBlankTitle is returned by NewFlowNode when the title is empty after trimming.
var ErrBlankTitle = errors.New("node title is blank")

// FlowNode is one step of a flowchart.
type FlowNode struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewFlowNode trims surrounding whitespace from the title, which must then
// be non-empty. Both fields are otherwise kept byte for byte.
func NewFlowNode(title, description string) (FlowNode, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return FlowNode{}, ErrBlankTitle
	}
	return FlowNode{Title: title, Description: description}, nil
}

// NodeSequence is an ordered list of nodes. Order is stacking order.
type NodeSequence []FlowNode

// Render returns the nodes as an indented JSON array.
func (ns NodeSequence) Render() string {
	if ns == nil {
		ns = NodeSequence{}
	}
	// FlowNode holds only strings, so marshalling cannot fail.
	b, _ := json.MarshalIndent(ns, "", "  ")
	return string(b)
}

// Titles returns the node titles in order.
func (ns NodeSequence) Titles() []string {
	titles := make([]string, len(ns))
	for i, n := range ns {
		titles[i] = n.Title
	}
	return titles
}
