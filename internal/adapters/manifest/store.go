// Package manifest implements the desired-state document on top of the yaml.v3 node API,
// so that comments and key order survive a rewrite.
package manifest

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	indent = 2

	// maxLinks bounds how many symlinks are followed for a dangling manifest link.
	maxLinks = 40
)

// Store loads and creates manifest documents at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for the manifest at path. When path is a symlink the store
// works on the link's target, so persisting rewrites the target and keeps the link.
func NewStore(path string) *Store {
	return &Store{path: resolveLink(path)}
}

// resolveLink follows the symlinks in path. A dangling link resolves to the file it
// points at, so creating the manifest creates the target.
func resolveLink(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	for range maxLinks {
		target, err := os.Readlink(path)
		if err != nil {
			return path
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return path
}

// Path returns the location of the manifest file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest, creating an empty one on disk if it does not exist.
func (s *Store) Load() (ports.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.create()
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", s.path)
	}

	root, err := parse(data)
	if err != nil {
		return nil, errors.Join(domain.ErrCorruptManifest, zerr.With(err, "path", s.path))
	}

	return &Document{
		path:        s.path,
		root:        root,
		fingerprint: xxhash.Sum64(data),
	}, nil
}

func (s *Store) create() (ports.Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestCreateFailed.Error()), "path", s.path)
	}

	doc := &Document{path: s.path, root: emptyDocument()}

	data, err := doc.encode()
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestCreateFailed.Error()), "path", s.path)
	}
	doc.fingerprint = xxhash.Sum64(data)

	return doc, nil
}

// parse decodes data into a document node whose content is a single mapping.
// Empty input and an explicit null document both yield an empty mapping.
func parse(data []byte) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyDocument(), nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, zerr.Wrap(err, "invalid yaml")
	}

	if alias := findAlias(&root); alias != nil {
		return nil, zerr.With(zerr.New("aliases are not supported"), "line", alias.Line)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		doc := emptyDocument()
		doc.Content[0].HeadComment = commentsOnly(data)
		return doc, nil
	}

	top := root.Content[0]
	switch {
	case top.Kind == yaml.MappingNode:
		if problem := invalidKey(top); problem != nil {
			return nil, zerr.With(zerr.New(problem.msg), "line", problem.node.Line)
		}
		return &root, nil
	case isNull(top):
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", HeadComment: top.HeadComment}
		root.Content[0] = mapping
		return &root, nil
	default:
		return nil, zerr.With(zerr.New("top level is not a mapping"), "line", top.Line)
	}
}

// commentsOnly returns the comment lines of a document that holds nothing else.
func commentsOnly(data []byte) string {
	var comments []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "", line == "---", line == "...":
		case strings.HasPrefix(line, "#"):
			comments = append(comments, line)
		default:
			return ""
		}
	}
	return strings.Join(comments, "\n")
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

// writeAtomic replaces path with data by renaming a temp file from the same directory.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
