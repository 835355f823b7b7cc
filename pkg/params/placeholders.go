package params

import (
	"fmt"

	"github.com/cbroglie/mustache"
)

// TreeNode is one node of a template's parse tree. The two variants that
// carry placeholder names are PlaceholderNode and SectionNode; every other
// mustache construct (inverted sections, partials, literal text) contributes
// no names and is dropped during conversion.
type TreeNode interface {
	treeNode()
}

// PlaceholderNode is a plain {{key}} substitution point.
type PlaceholderNode struct {
	Key string
}

// SectionNode is a {{#key}}...{{/key}} scope with nested children.
type SectionNode struct {
	Key      string
	Children []TreeNode
}

func (PlaceholderNode) treeNode() {}
func (SectionNode) treeNode()     {}

// ParseTemplate parses a mustache template into the placeholder-bearing
// subset of its node tree.
func ParseTemplate(template string) ([]TreeNode, error) {
	tmpl, err := mustache.ParseString(template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return convertTags(tmpl.Tags()), nil
}

func convertTags(tags []mustache.Tag) []TreeNode {
	var nodes []TreeNode
	for _, tag := range tags {
		switch tag.Type() {
		case mustache.Variable:
			nodes = append(nodes, PlaceholderNode{Key: tag.Name()})
		case mustache.Section:
			nodes = append(nodes, SectionNode{Key: tag.Name(), Children: convertTags(tag.Tags())})
		}
	}
	return nodes
}

// collectKeyNames gathers the distinct placeholder names referenced by a node
// tree. A section contributes its own key and recurses into its children;
// nested keys land in the flat result as-is.
func collectKeyNames(nodes []TreeNode) []string {
	seen := make(map[string]bool)
	var keys []string

	var walk func(nodes []TreeNode)
	walk = func(nodes []TreeNode) {
		for _, node := range nodes {
			switch n := node.(type) {
			case PlaceholderNode:
				if !seen[n.Key] {
					seen[n.Key] = true
					keys = append(keys, n.Key)
				}
			case SectionNode:
				if !seen[n.Key] {
					seen[n.Key] = true
					keys = append(keys, n.Key)
				}
				walk(n.Children)
			}
		}
	}
	walk(nodes)

	return keys
}

// CollectQueryPlaceholders returns the distinct set of placeholder names a
// template references, in order of first appearance. Section keys and the
// keys nested inside them both appear in the flat result.
func CollectQueryPlaceholders(template string) ([]string, error) {
	nodes, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	return collectKeyNames(nodes), nil
}

// ParameterNames flattens a parameter map to the names it satisfies: nested
// mappings emit one "outer.inner" name per inner key, everything else emits
// the outer key itself.
func ParameterNames(parameters map[string]any) []string {
	var names []string
	for key, value := range parameters {
		switch nested := value.(type) {
		case map[string]any:
			for inner := range nested {
				names = append(names, key+"."+inner)
			}
		case map[string]string:
			for inner := range nested {
				names = append(names, key+"."+inner)
			}
		default:
			names = append(names, key)
		}
	}
	return names
}
