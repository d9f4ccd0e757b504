/*
Copyright 2023 The KodeRover Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package reconcile compares trigger runtime inputs against a pipeline's
// runtime input template. Both sides are flattened to ordered FQN leaves
// before comparison, so structural YAML differences never mask a match.
package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FieldKind classifies a flattened leaf by its terminal key. Discriminators
// and identifiers anchor the tree shape and are never user-editable input.
type FieldKind int

const (
	KindValue FieldKind = iota
	KindIdentifier
	KindDiscriminator
)

// Entry is one flattened leaf. FQN uses dots for map keys and bracketed
// indices for sequences, e.g. "pipeline.stages[0].stage.identifier".
type Entry struct {
	FQN   string
	Value string
	Kind  FieldKind

	tag string
}

// Document holds flattened leaves in source order with an FQN index.
type Document struct {
	entries []*Entry
	index   map[string]*Entry
}

func newDocument() *Document {
	return &Document{index: map[string]*Entry{}}
}

func (d *Document) add(e *Entry) {
	if _, ok := d.index[e.FQN]; ok {
		return
	}
	d.entries = append(d.entries, e)
	d.index[e.FQN] = e
}

func (d *Document) Entries() []*Entry {
	return d.entries
}

func (d *Document) Get(fqn string) (*Entry, bool) {
	e, ok := d.index[fqn]
	return e, ok
}

func (d *Document) Empty() bool {
	return len(d.entries) == 0
}

func kindFor(key string) FieldKind {
	switch key {
	case "type":
		return KindDiscriminator
	case "identifier", "name":
		return KindIdentifier
	default:
		return KindValue
	}
}

// Flatten parses a YAML document into ordered FQN leaves. An empty or
// comment-only document flattens to an empty Document, not an error.
func Flatten(in string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(in), &root); err != nil {
		return nil, errors.Wrap(err, "invalid yaml")
	}

	doc := newDocument()
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	if err := flattenNode(root.Content[0], "", "", doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func flattenNode(node *yaml.Node, path, lastKey string, doc *Document) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			child := path
			if child == "" {
				child = key
			} else {
				child = child + "." + key
			}
			if err := flattenNode(node.Content[i+1], child, key, doc); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			child := fmt.Sprintf("%s[%d]", path, i)
			if err := flattenNode(item, child, lastKey, doc); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		doc.add(&Entry{
			FQN:   path,
			Value: node.Value,
			Kind:  kindFor(lastKey),
			tag:   node.Tag,
		})
	case yaml.AliasNode:
		return flattenNode(node.Alias, path, lastKey, doc)
	default:
		return fmt.Errorf("unsupported yaml node kind %d at %s", node.Kind, path)
	}
	return nil
}

type pathStep struct {
	key     string
	index   int
	isIndex bool
}

func parseFQN(fqn string) []pathStep {
	var steps []pathStep
	i := 0
	for i < len(fqn) {
		switch fqn[i] {
		case '.':
			i++
		case '[':
			j := strings.IndexByte(fqn[i:], ']')
			if j < 0 {
				steps = append(steps, pathStep{key: fqn[i:]})
				return steps
			}
			idx, err := strconv.Atoi(fqn[i+1 : i+j])
			if err != nil {
				steps = append(steps, pathStep{key: fqn[i+1 : i+j]})
			} else {
				steps = append(steps, pathStep{index: idx, isIndex: true})
			}
			i += j + 1
		default:
			j := i
			for j < len(fqn) && fqn[j] != '.' && fqn[j] != '[' {
				j++
			}
			steps = append(steps, pathStep{key: fqn[i:j]})
			i = j
		}
	}
	return steps
}

// YAML rebuilds the nested document from the flattened leaves, preserving
// entry order for map keys and filling sequence gaps with nulls.
func (d *Document) YAML() (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range d.entries {
		leaf := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Value, Tag: e.tag}
		if leaf.Tag == "" {
			leaf.Tag = "!!str"
		}
		if err := insert(root, parseFQN(e.FQN), leaf); err != nil {
			return "", errors.Wrapf(err, "rebuild %s", e.FQN)
		}
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func insert(node *yaml.Node, steps []pathStep, leaf *yaml.Node) error {
	if len(steps) == 0 {
		return nil
	}
	step := steps[0]

	if step.isIndex {
		if node.Kind != yaml.SequenceNode {
			return fmt.Errorf("expected sequence, found %d", node.Kind)
		}
		for len(node.Content) <= step.index {
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"})
		}
		if len(steps) == 1 {
			node.Content[step.index] = leaf
			return nil
		}
		child := node.Content[step.index]
		if child.Kind == yaml.ScalarNode && child.Tag == "!!null" {
			child = containerFor(steps[1])
			node.Content[step.index] = child
		}
		return insert(child, steps[1:], leaf)
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping, found %d", node.Kind)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == step.key {
			if len(steps) == 1 {
				node.Content[i+1] = leaf
				return nil
			}
			return insert(node.Content[i+1], steps[1:], leaf)
		}
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: step.key}
	if len(steps) == 1 {
		node.Content = append(node.Content, keyNode, leaf)
		return nil
	}
	child := containerFor(steps[1])
	node.Content = append(node.Content, keyNode, child)
	return insert(child, steps[1:], leaf)
}

func containerFor(next pathStep) *yaml.Node {
	if next.isIndex {
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}
