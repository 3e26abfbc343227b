package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fmuoria/hiring-agent/internal/models"
)

// AgentRegistry is the set of configured agents in file order.
// The zero value is an empty registry.
type AgentRegistry struct {
	order  []string
	agents map[string]models.AgentDescriptor
}

// NewRegistry builds a registry from descriptors; later duplicates replace earlier ones
func NewRegistry(agents ...models.AgentDescriptor) AgentRegistry {
	var r AgentRegistry
	for _, a := range agents {
		r.Set(a)
	}
	return r
}

// Len returns the number of agents
func (r AgentRegistry) Len() int { return len(r.order) }

// IsZero lets yaml omit an empty registry
func (r AgentRegistry) IsZero() bool { return len(r.order) == 0 }

// IDs returns agent identifiers in file order
func (r AgentRegistry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Get returns the agent with the given identifier
func (r AgentRegistry) Get(id string) (models.AgentDescriptor, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// All returns every agent in file order
func (r AgentRegistry) All() []models.AgentDescriptor {
	out := make([]models.AgentDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}

// Enabled returns the enabled agents in file order
func (r AgentRegistry) Enabled() []models.AgentDescriptor {
	var out []models.AgentDescriptor
	for _, id := range r.order {
		if a := r.agents[id]; a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// Set adds or replaces an agent, keeping its position if it already exists
func (r *AgentRegistry) Set(a models.AgentDescriptor) {
	if r.agents == nil {
		r.agents = make(map[string]models.AgentDescriptor)
	}
	if _, exists := r.agents[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.agents[a.ID] = a
}

// UnmarshalYAML decodes the agents mapping, keeping key order
func (r *AgentRegistry) UnmarshalYAML(node *yaml.Node) error {
	*r = AgentRegistry{}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: agents must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var agent models.AgentDescriptor
		if err := valueNode.Decode(&agent); err != nil {
			return fmt.Errorf("agent %s: %w", keyNode.Value, err)
		}
		agent.ID = keyNode.Value
		r.Set(agent)
	}
	return nil
}

// MarshalYAML encodes the agents mapping in registry order
func (r AgentRegistry) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, id := range r.order {
		var value yaml.Node
		if err := value.Encode(r.agents[id]); err != nil {
			return nil, fmt.Errorf("agent %s: %w", id, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id},
			&value,
		)
	}
	return node, nil
}
