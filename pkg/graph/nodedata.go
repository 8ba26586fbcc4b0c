package graph

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// NodeData is the closed sum over per-type node payloads. The sealed method
// keeps the variant set inside this package so that type switches over it
// stay exhaustive.
type NodeData interface {
	// Type returns the variant's node type.
	Type() NodeType
	// Base exposes the fields shared by every variant.
	Base() *BaseData
	// Clone returns a deep copy of the variant.
	Clone() NodeData

	sealed()
}

// BaseData holds the fields every node variant carries.
type BaseData struct {
	// Label is the display name of the node.
	Label string `json:"label"`
	// ReferenceKey is the stable identifier other nodes use in variable
	// references such as {{llm_1.text}}. Never reassigned once set.
	ReferenceKey string `json:"reference_key,omitempty"`
}

func (b *BaseData) Base() *BaseData { return b }
func (b *BaseData) sealed()         {}

// InputVariable declares one variable the start node accepts.
type InputVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, number or boolean
	Description string `json:"description,omitempty"`
}

// OutputType selects how an end node shapes its output.
type OutputType string

const (
	OutputVariable   OutputType = "variable"
	OutputTemplate   OutputType = "template"
	OutputStructured OutputType = "structured"
)

// OutputField is one key of a structured end-node output.
type OutputField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ConditionType selects how a condition node is evaluated.
type ConditionType string

const (
	ConditionExpression ConditionType = "expression"
	ConditionVariable   ConditionType = "variable"
	ConditionLLM        ConditionType = "llm"
)

// Operator compares a variable against a value in a condition node.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpIsEmpty     Operator = "isEmpty"
	OpIsNotEmpty  Operator = "isNotEmpty"
)

// KeyValue is a plain header or query-parameter pair.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FormField is one form-data entry of an api node request body.
type FormField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"` // text or file
}

// Category is one classification rule of a classifier node.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StartData configures the workflow entry node.
type StartData struct {
	BaseData
	InputVariables []InputVariable `json:"input_variables"`
}

func (d *StartData) Type() NodeType { return TypeStart }

func (d *StartData) Clone() NodeData {
	c := *d
	c.InputVariables = cloneSlice(d.InputVariables)
	return &c
}

// EndData configures a workflow output node.
type EndData struct {
	BaseData
	OutputType      OutputType    `json:"output_type"`
	OutputVariable  string        `json:"output_variable,omitempty"`
	OutputTemplate  string        `json:"output_template,omitempty"`
	OutputStructure []OutputField `json:"output_structure,omitempty"`
}

func (d *EndData) Type() NodeType { return TypeEnd }

func (d *EndData) Clone() NodeData {
	c := *d
	c.OutputStructure = cloneSlice(d.OutputStructure)
	return &c
}

// LLMData configures a model-call node. The prompt supports
// {{reference_key.variable}} references resolved by the engine.
type LLMData struct {
	BaseData
	ProviderID    string   `json:"provider_id,omitempty"`
	ModelID       string   `json:"model_id,omitempty"`
	ModelName     string   `json:"model_name,omitempty"`
	SystemPrompt  string   `json:"system_prompt,omitempty"`
	UserPrompt    string   `json:"user_prompt"`
	Temperature   float64  `json:"temperature"`
	MaxTokens     int      `json:"max_tokens"`
	ToolIDs       []string `json:"tool_ids,omitempty"`
	CollectionIDs []string `json:"collection_ids,omitempty"`
}

func (d *LLMData) Type() NodeType { return TypeLLM }

func (d *LLMData) Clone() NodeData {
	c := *d
	c.ToolIDs = cloneSlice(d.ToolIDs)
	c.CollectionIDs = cloneSlice(d.CollectionIDs)
	return &c
}

// AgentData configures a delegated-agent node.
type AgentData struct {
	BaseData
	AgentID      string            `json:"agent_id"`
	AgentName    string            `json:"agent_name,omitempty"`
	InputMapping map[string]string `json:"input_mapping,omitempty"`
}

func (d *AgentData) Type() NodeType { return TypeAgent }

func (d *AgentData) Clone() NodeData {
	c := *d
	c.InputMapping = cloneStringMap(d.InputMapping)
	return &c
}

// ToolData configures a tool-invocation node.
type ToolData struct {
	BaseData
	ToolID       string            `json:"tool_id"`
	ToolName     string            `json:"tool_name,omitempty"`
	Config       map[string]any    `json:"config,omitempty"`
	InputMapping map[string]string `json:"input_mapping,omitempty"`
}

func (d *ToolData) Type() NodeType { return TypeTool }

func (d *ToolData) Clone() NodeData {
	c := *d
	c.Config = cloneAnyMap(d.Config)
	c.InputMapping = cloneStringMap(d.InputMapping)
	return &c
}

// APIData configures an HTTP-request node.
type APIData struct {
	BaseData
	Method         string      `json:"method"`
	URL            string      `json:"url"`
	Headers        []KeyValue  `json:"headers,omitempty"`
	Params         []KeyValue  `json:"params,omitempty"`
	BodyType       string      `json:"body_type"` // none, json, form-data, x-www-form-urlencoded, raw
	Body           string      `json:"body,omitempty"`
	FormData       []FormField `json:"form_data,omitempty"`
	FormURLEncoded []KeyValue  `json:"form_url_encoded,omitempty"`
	RawType        string      `json:"raw_type,omitempty"` // text, html, xml, javascript
}

func (d *APIData) Type() NodeType { return TypeAPI }

func (d *APIData) Clone() NodeData {
	c := *d
	c.Headers = cloneSlice(d.Headers)
	c.Params = cloneSlice(d.Params)
	c.FormData = cloneSlice(d.FormData)
	c.FormURLEncoded = cloneSlice(d.FormURLEncoded)
	return &c
}

// ConditionData configures a branching node. The matching detail field
// depends on ConditionType: expression, variable+operator, or llm_prompt.
type ConditionData struct {
	BaseData
	ConditionType ConditionType `json:"condition_type"`
	Expression    string        `json:"expression,omitempty"`
	Variable      string        `json:"variable,omitempty"`
	Operator      Operator      `json:"operator,omitempty"`
	CompareValue  string        `json:"compare_value,omitempty"`
	LLMPrompt     string        `json:"llm_prompt,omitempty"`
	ProviderID    string        `json:"provider_id,omitempty"`
	ModelID       string        `json:"model_id,omitempty"`
}

func (d *ConditionData) Type() NodeType { return TypeCondition }

func (d *ConditionData) Clone() NodeData {
	c := *d
	return &c
}

// ClassifierData configures an input-classification node with per-category
// output handles.
type ClassifierData struct {
	BaseData
	InputVariable string     `json:"input_variable"`
	ProviderID    string     `json:"provider_id,omitempty"`
	ModelID       string     `json:"model_id,omitempty"`
	Categories    []Category `json:"categories"`
}

func (d *ClassifierData) Type() NodeType { return TypeClassifier }

func (d *ClassifierData) Clone() NodeData {
	c := *d
	c.Categories = cloneSlice(d.Categories)
	return &c
}

// ParallelData configures a fan-out node.
type ParallelData struct {
	BaseData
	Branches   int  `json:"branches"`
	WaitForAll bool `json:"wait_for_all"`
	Timeout    int  `json:"timeout,omitempty"` // seconds
}

func (d *ParallelData) Type() NodeType { return TypeParallel }

func (d *ParallelData) Clone() NodeData {
	c := *d
	return &c
}

// DefaultData returns the data a freshly created node of the given type
// starts with: default label plus per-type creation defaults.
func DefaultData(typ NodeType) (NodeData, error) {
	switch typ {
	case TypeStart:
		return &StartData{
			BaseData:       BaseData{Label: "Start"},
			InputVariables: []InputVariable{},
		}, nil
	case TypeEnd:
		return &EndData{
			BaseData:   BaseData{Label: "End"},
			OutputType: OutputTemplate,
		}, nil
	case TypeLLM:
		return &LLMData{
			BaseData:    BaseData{Label: "LLM"},
			Temperature: 0.7,
			MaxTokens:   2000,
		}, nil
	case TypeAgent:
		return &AgentData{BaseData: BaseData{Label: "Agent"}}, nil
	case TypeTool:
		return &ToolData{BaseData: BaseData{Label: "Tool"}}, nil
	case TypeAPI:
		return &APIData{
			BaseData: BaseData{Label: "API"},
			Method:   "GET",
			BodyType: "none",
		}, nil
	case TypeCondition:
		return &ConditionData{
			BaseData:      BaseData{Label: "Condition"},
			ConditionType: ConditionExpression,
		}, nil
	case TypeClassifier:
		return &ClassifierData{
			BaseData:   BaseData{Label: "Classifier"},
			Categories: []Category{},
		}, nil
	case TypeParallel:
		return &ParallelData{
			BaseData:   BaseData{Label: "Parallel"},
			Branches:   2,
			WaitForAll: true,
		}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownNodeType, "%q", typ)
	}
}

// MarshalNodeData encodes a variant with its type discriminator spliced in,
// matching the wire shape where data.type mirrors the node type.
func MarshalNodeData(d NodeData) ([]byte, error) {
	if d == nil {
		return nil, errors.New("nil node data")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(d.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

// UnmarshalNodeData decodes a data object by its embedded type discriminator.
func UnmarshalNodeData(raw []byte) (NodeData, error) {
	typ, err := peekDataType(raw)
	if err != nil {
		return nil, err
	}
	return unmarshalNodeDataAs(typ, raw)
}

func peekDataType(raw []byte) (NodeType, error) {
	var probe struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", errors.Wrap(err, "decode node data")
	}
	return probe.Type, nil
}

func unmarshalNodeDataAs(typ NodeType, raw []byte) (NodeData, error) {
	d, err := DefaultData(typ)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, errors.Wrapf(err, "decode %q data", typ)
	}
	return d, nil
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAnyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	default:
		return v
	}
}
