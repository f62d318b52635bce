// Package compose extracts service names and their dependency edges from
// Docker Compose files. It deliberately understands only the slice of the
// format dstart needs: service declaration order, "links" and "depends_on".
package compose

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nano-labs/dstart/internal/depgraph"
)

// Load reads every given compose file and merges them into one ordered
// service list. The first appearance of a service fixes its display
// position; dependency sets union across files.
func Load(paths []string) ([]depgraph.Service, error) {
	var order []string
	deps := make(map[string]map[string]bool)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		services, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, s := range services {
			if _, ok := deps[s.Name]; !ok {
				order = append(order, s.Name)
				deps[s.Name] = make(map[string]bool)
			}
			for _, d := range s.DependsOn {
				deps[s.Name][d] = true
			}
		}
	}

	out := make([]depgraph.Service, 0, len(order))
	for _, name := range order {
		s := depgraph.Service{Name: name}
		for d := range deps[name] {
			s.DependsOn = append(s.DependsOn, d)
		}
		out = append(out, s)
	}
	return out, nil
}

// Parse extracts services from a single compose document. Both layouts are
// accepted: the v2+ "services:" mapping and the v1 top-level service
// mapping. Order follows the document, not Go map iteration, which is why
// this walks yaml.Node instead of unmarshalling into a map.
func Parse(data []byte) ([]depgraph.Service, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("compose document root is not a mapping")
	}

	servicesNode := root
	if n := mappingValue(root, "services"); n != nil {
		if n.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("services key is not a mapping")
		}
		servicesNode = n
	}

	var out []depgraph.Service
	for i := 0; i+1 < len(servicesNode.Content); i += 2 {
		key, val := servicesNode.Content[i], servicesNode.Content[i+1]
		if servicesNode == root && isTopLevelMeta(key.Value) {
			continue
		}
		s := depgraph.Service{Name: key.Value}
		if val.Kind == yaml.MappingNode {
			s.DependsOn = serviceDependencies(val)
		}
		out = append(out, s)
	}
	return out, nil
}

// Top-level keys of a versioned compose file that are not services. Only
// consulted for v1-style documents, where services live at the root.
func isTopLevelMeta(key string) bool {
	switch key {
	case "version", "networks", "volumes", "configs", "secrets":
		return true
	}
	return strings.HasPrefix(key, "x-") // extension fields
}

// serviceDependencies merges the service's "links" and "depends_on"
// declarations into one deduplicated name list.
func serviceDependencies(service *yaml.Node) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	if links := mappingValue(service, "links"); links != nil && links.Kind == yaml.SequenceNode {
		for _, entry := range links.Content {
			add(linkTarget(entry.Value))
		}
	}

	dependsOn := mappingValue(service, "depends_on")
	if dependsOn == nil {
		return out
	}
	switch dependsOn.Kind {
	case yaml.SequenceNode:
		for _, entry := range dependsOn.Content {
			add(entry.Value)
		}
	case yaml.MappingNode:
		// Long form: name -> {condition: ...}. Conditions are the compose
		// binary's concern; only the names matter here.
		for i := 0; i+1 < len(dependsOn.Content); i += 2 {
			add(dependsOn.Content[i].Value)
		}
	}
	return out
}

// linkTarget strips the alias from a "service[:alias]" link entry.
func linkTarget(link string) string {
	if i := strings.IndexByte(link, ':'); i >= 0 {
		return link[:i]
	}
	return link
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
