package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Document is the in-memory working copy of a manifest file.
type Document struct {
	path        string
	root        *yaml.Node
	fingerprint uint64
}

func (d *Document) mapping() *yaml.Node {
	return d.root.Content[0]
}

// Sections returns the backend section names in document order.
func (d *Document) Sections() []string {
	top := d.mapping()
	names := make([]string, 0, len(top.Content)/2)
	for i := 0; i+1 < len(top.Content); i += 2 {
		names = append(names, top.Content[i].Value)
	}
	return names
}

// Section returns the entries of a backend section in document order.
func (d *Document) Section(backend string) ([]domain.Entry, error) {
	section, err := d.section(backend)
	if err != nil || section == nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(section.Content)/2)
	for i := 0; i+1 < len(section.Content); i += 2 {
		key := section.Content[i]
		props, err := d.properties(backend, key.Value, section.Content[i+1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.NewEntry(key.Value, props))
	}

	return entries, nil
}

// Upsert writes entry into the backend section, creating the section if needed.
// Properties of an existing entry keep their order; new ones follow, version first.
func (d *Document) Upsert(backend string, entry domain.Entry) error {
	if backend == "" {
		return zerr.Wrap(domain.ErrInvalidBackendName, "empty backend name")
	}
	if entry.Name == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPackageName, "empty package name"), "backend", backend)
	}

	section, err := d.section(backend)
	if err != nil {
		return err
	}
	if section == nil {
		section = d.addSection(backend)
	}
	section.Style &^= yaml.FlowStyle
	d.mapping().Style &^= yaml.FlowStyle

	props := entry.WithVersion("").Properties

	if idx := findKey(section, entry.Name); idx >= 0 {
		old := section.Content[idx+1]
		if _, err := d.properties(backend, entry.Name, old); err != nil {
			return err
		}
		section.Content[idx+1] = mergeProperties(old, props)
		return nil
	}

	section.Content = append(section.Content, scalar(entry.Name), mergeProperties(nil, props))
	return nil
}

// Remove deletes the named entry from the backend section.
func (d *Document) Remove(backend, name string) error {
	top := d.mapping()
	idx := findKey(top, backend)
	if idx < 0 {
		return zerr.With(zerr.Wrap(domain.ErrSectionNotFound, backend), "path", d.path)
	}

	section, err := d.section(backend)
	if err != nil {
		return err
	}
	entryIdx := -1
	if section != nil {
		entryIdx = findKey(section, name)
	}
	if entryIdx < 0 {
		return zerr.With(zerr.Wrap(domain.ErrEntryNotFound, name), "backend", backend)
	}

	section.Content = slices.Delete(section.Content, entryIdx, entryIdx+2)
	return nil
}

// Persist writes the document back to disk. It refuses to overwrite a file that
// changed on disk since it was loaded.
func (d *Document) Persist() error {
	data, err := d.encode()
	if err != nil {
		return err
	}

	current, err := os.ReadFile(d.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return errors.Join(domain.ErrManifestWriteFailed, zerr.With(err, "path", d.path))
	case xxhash.Sum64(current) != d.fingerprint:
		return errors.Join(domain.ErrManifestWriteFailed, zerr.With(zerr.Wrap(domain.ErrManifestChanged, "refusing to overwrite"), "path", d.path))
	}

	if err := writeAtomic(d.path, data); err != nil {
		return errors.Join(domain.ErrManifestWriteFailed, zerr.With(err, "path", d.path))
	}
	d.fingerprint = xxhash.Sum64(data)

	return nil
}

// Bytes renders the document as it would be persisted.
func (d *Document) Bytes() ([]byte, error) {
	return d.encode()
}

func (d *Document) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(d.root); err != nil {
		return nil, errors.Join(domain.ErrManifestWriteFailed, zerr.Wrap(err, domain.ErrManifestMarshalFailed.Error()))
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Join(domain.ErrManifestWriteFailed, zerr.Wrap(err, domain.ErrManifestMarshalFailed.Error()))
	}
	return buf.Bytes(), nil
}

// section returns the mapping node of a backend section, or nil when it is absent.
// A null section is turned into an empty mapping in place.
func (d *Document) section(backend string) (*yaml.Node, error) {
	top := d.mapping()
	idx := findKey(top, backend)
	if idx < 0 {
		return nil, nil
	}

	value := top.Content[idx+1]
	switch {
	case value.Kind == yaml.MappingNode:
		if err := d.checkKeys(fmt.Sprintf("section %q", backend), value); err != nil {
			return nil, err
		}
		return value, nil
	case isNull(value):
		mapping := &yaml.Node{
			Kind:        yaml.MappingNode,
			Tag:         "!!map",
			LineComment: value.LineComment,
		}
		top.Content[idx+1] = mapping
		return mapping, nil
	default:
		return nil, d.corrupt(fmt.Sprintf("section %q is not a mapping", backend), value)
	}
}

// properties validates an entry node and returns its property set.
func (d *Document) properties(backend, name string, node *yaml.Node) (domain.Properties, error) {
	if isNull(node) {
		return domain.Properties{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, zerr.With(d.corrupt(fmt.Sprintf("entry %q is not a mapping", name), node), "backend", backend)
	}
	if err := d.checkKeys(fmt.Sprintf("entry %q", name), node); err != nil {
		return nil, zerr.With(err, "backend", backend)
	}

	props := make(domain.Properties, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			msg := fmt.Sprintf("property %q of entry %q is not a scalar", key.Value, name)
			return nil, zerr.With(d.corrupt(msg, value), "backend", backend)
		}
		props[key.Value] = value.Value
	}

	return props, nil
}

func (d *Document) addSection(backend string) *yaml.Node {
	top := d.mapping()
	section := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	top.Content = append(top.Content, scalar(backend), section)
	return section
}

// checkKeys rejects non-scalar and repeated keys in mapping. A repeated key would hide
// every block after the first.
func (d *Document) checkKeys(where string, mapping *yaml.Node) error {
	if problem := invalidKey(mapping); problem != nil {
		return d.corrupt(where+": "+problem.msg, problem.node)
	}
	return nil
}

func (d *Document) corrupt(msg string, node *yaml.Node) error {
	err := zerr.With(zerr.New(msg), "path", d.path)
	err = zerr.With(err, "line", node.Line)
	return errors.Join(domain.ErrCorruptManifest, err)
}

// mergeProperties builds a property mapping from props, reusing the key and value
// nodes of old (and their comments) for properties that survive.
func mergeProperties(old *yaml.Node, props domain.Properties) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	seen := make(map[string]bool, len(props))

	if old != nil && old.Kind == yaml.MappingNode {
		node.HeadComment = old.HeadComment
		node.LineComment = old.LineComment
		node.FootComment = old.FootComment

		for i := 0; i+1 < len(old.Content); i += 2 {
			key := old.Content[i]
			value, ok := props[key.Value]
			if !ok {
				continue
			}
			seen[key.Value] = true
			valueNode := old.Content[i+1]
			if valueNode.Kind != yaml.ScalarNode || valueNode.Value != value {
				valueNode = scalar(value)
			}
			node.Content = append(node.Content, key, valueNode)
		}
	}

	if _, ok := props[domain.VersionKey]; ok && !seen[domain.VersionKey] {
		node.Content = append(node.Content, scalar(domain.VersionKey), scalar(props[domain.VersionKey]))
		seen[domain.VersionKey] = true
	}
	for _, key := range props.Keys() {
		if seen[key] {
			continue
		}
		node.Content = append(node.Content, scalar(key), scalar(props[key]))
	}

	return node
}

func findKey(mapping *yaml.Node, key string) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// findAlias returns the first alias node below node. Aliases share one node between
// several places, so editing one section would silently edit another.
func findAlias(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.AliasNode {
		return node
	}
	for _, child := range node.Content {
		if alias := findAlias(child); alias != nil {
			return alias
		}
	}
	return nil
}

type keyProblem struct {
	msg  string
	node *yaml.Node
}

// invalidKey reports the first key of mapping that is not a plain scalar or repeats an earlier key.
func invalidKey(mapping *yaml.Node) *keyProblem {
	seen := make(map[string]bool, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		if key.Kind != yaml.ScalarNode {
			return &keyProblem{msg: "key is not a scalar", node: key}
		}
		if seen[key.Value] {
			return &keyProblem{msg: fmt.Sprintf("duplicate key %q", key.Value), node: key}
		}
		seen[key.Value] = true
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
