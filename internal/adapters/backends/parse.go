package backends

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"path"
	"regexp"
	"sort"
	"strings"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/zerr"
)

// NameParser treats every non-empty line as a package name without a version.
func NameParser(output []byte) ([]domain.InstalledPackage, error) {
	var pkgs []domain.InstalledPackage
	for _, line := range lines(output) {
		pkgs = append(pkgs, domain.InstalledPackage{Name: line})
	}
	return pkgs, nil
}

// PatternParser returns a parser that matches pattern against every line.
// The "name" group is required, the "version" group optional.
// Lines that do not match are skipped.
func PatternParser(pattern string) (ListParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidBackendConfig, err)
	}

	nameIdx := re.SubexpIndex("name")
	if nameIdx < 0 {
		return nil, zerr.Wrap(domain.ErrInvalidBackendConfig, `list pattern has no "name" group`)
	}
	versionIdx := re.SubexpIndex("version")

	return func(output []byte) ([]domain.InstalledPackage, error) {
		var pkgs []domain.InstalledPackage
		for _, line := range lines(output) {
			m := re.FindStringSubmatch(line)
			if m == nil || m[nameIdx] == "" {
				continue
			}
			pkg := domain.InstalledPackage{Name: m[nameIdx]}
			if versionIdx >= 0 {
				pkg.Version = m[versionIdx]
			}
			pkgs = append(pkgs, pkg)
		}
		return pkgs, nil
	}, nil
}

// npmListOutput is the shape of `npm ls --global --depth=0 --json`.
type npmListOutput struct {
	Dependencies map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

// ParseNPM parses the JSON listing of globally installed npm packages.
func ParseNPM(output []byte) ([]domain.InstalledPackage, error) {
	var out npmListOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, err
	}

	pkgs := make([]domain.InstalledPackage, 0, len(out.Dependencies))
	for name, dep := range out.Dependencies {
		pkgs = append(pkgs, domain.InstalledPackage{Name: name, Version: dep.Version})
	}
	sortPackages(pkgs)
	return pkgs, nil
}

// ParsePip parses `pip list --format=json`.
func ParsePip(output []byte) ([]domain.InstalledPackage, error) {
	var out []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, err
	}

	pkgs := make([]domain.InstalledPackage, 0, len(out))
	for _, p := range out {
		pkgs = append(pkgs, domain.InstalledPackage{Name: p.Name, Version: p.Version})
	}
	return pkgs, nil
}

// nixElement is one installed element of a nix profile.
type nixElement struct {
	AttrPath   string   `json:"attrPath"`
	StorePaths []string `json:"storePaths"`
}

// ParseNixProfile parses `nix profile list --json`. Newer nix versions key the
// elements by name, older ones emit a list and only carry the attribute path.
func ParseNixProfile(output []byte) ([]domain.InstalledPackage, error) {
	var raw struct {
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, err
	}

	elements := make(map[string]nixElement)
	trimmed := bytes.TrimSpace(raw.Elements)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		var list []nixElement
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		for _, el := range list {
			if el.AttrPath == "" {
				continue
			}
			elements[path.Ext("." + el.AttrPath)[1:]] = el
		}
	default:
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, err
		}
	}

	pkgs := make([]domain.InstalledPackage, 0, len(elements))
	for name, el := range elements {
		pkgs = append(pkgs, domain.InstalledPackage{Name: name, Version: nixStoreVersion(name, el.StorePaths)})
	}
	sortPackages(pkgs)
	return pkgs, nil
}

// nixStoreVersion extracts the version from a store path like
// /nix/store/<32 char hash>-ripgrep-14.1.0.
func nixStoreVersion(name string, storePaths []string) string {
	const hashLen = 32

	for _, p := range storePaths {
		base := path.Base(p)
		if len(base) <= hashLen+1 || base[hashLen] != '-' {
			continue
		}
		rest := base[hashLen+1:]
		if v, ok := strings.CutPrefix(rest, name+"-"); ok && v != "" {
			return v
		}
	}
	return ""
}

func lines(output []byte) []string {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func sortPackages(pkgs []domain.InstalledPackage) {
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
}
