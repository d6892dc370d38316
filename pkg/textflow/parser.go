package textflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parse errors reported per attempt inside a ParseError.
var (
	ErrNoArray     = errors.New("no JSON array found")
	ErrEmptyArray  = errors.New("array has no elements")
	ErrNotObject   = errors.New("element is not an object")
	ErrFieldType   = errors.New("field is an object or array")
	ErrMissingText = errors.New("title is missing or null")
)

// Strategy turns raw text into nodes. It must be pure.
type Strategy struct {
	Name  string
	Parse func(raw string) (NodeSequence, error)
}

// StrictArray decodes the whole trimmed input as a JSON array of nodes.
var StrictArray = Strategy{Name: "strict_array", Parse: parseStrict}

// EmbeddedArray decodes the span from the first '[' to the last ']'.
var EmbeddedArray = Strategy{Name: "embedded_array", Parse: parseEmbedded}

// Parser runs strategies in order; the first success wins.
type Parser struct {
	strategies []Strategy
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrategies replaces the default strategy chain.
func WithStrategies(strategies ...Strategy) ParserOption {
	return func(p *Parser) {
		p.strategies = append([]Strategy(nil), strategies...)
	}
}

// NewParser returns a Parser using StrictArray then EmbeddedArray.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{strategies: []Strategy{StrictArray, EmbeddedArray}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the nodes from the first accepting strategy, or a
// *ParseError listing every attempt.
func (p *Parser) Parse(raw string) (NodeSequence, error) {
	attempts := make([]error, 0, len(p.strategies))
	for _, s := range p.strategies {
		nodes, err := s.Parse(raw)
		if err == nil && len(nodes) > 0 {
			return nodes, nil
		}
		if err == nil {
			err = ErrEmptyArray
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", s.Name, err))
	}
	return nil, &ParseError{Attempts: attempts}
}

func parseStrict(raw string) (NodeSequence, error) {
	return decodeNodes([]byte(strings.TrimSpace(raw)))
}

func parseEmbedded(raw string) (NodeSequence, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, ErrNoArray
	}
	return decodeNodes([]byte(raw[start : end+1]))
}

// decodeNodes decodes a JSON array of {"title","description"} objects.
// Any invalid element rejects the whole array.
func decodeNodes(data []byte) (NodeSequence, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	if len(elems) == 0 {
		return nil, ErrEmptyArray
	}

	nodes := make(NodeSequence, 0, len(elems))
	for i, elem := range elems {
		n, err := decodeNode(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeNode(elem json.RawMessage) (FlowNode, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 || elem[0] != '{' {
		return FlowNode{}, ErrNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return FlowNode{}, fmt.Errorf("%w: %v", ErrNotObject, err)
	}

	title, ok, err := scalarText(fields["title"])
	if err != nil {
		return FlowNode{}, fmt.Errorf("title: %w", err)
	}
	if !ok {
		return FlowNode{}, ErrMissingText
	}
	desc, _, err := scalarText(fields["description"])
	if err != nil {
		return FlowNode{}, fmt.Errorf("description: %w", err)
	}
	return NewFlowNode(title, desc)
}

// scalarText coerces a JSON value to text. Strings are used as-is, numbers
// and booleans become their literal text. ok is false for null or absent.
func scalarText(v json.RawMessage) (text string, ok bool, err error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false, nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '{', '[':
		return "", false, ErrFieldType
	default:
		return string(v), true, nil
	}
}
