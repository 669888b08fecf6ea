package mods

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mod-manager/core/gamedata"
	"mod-manager/core/meta"
)

const (
	// MetaFile holds package metadata and file associations.
	MetaFile = "meta.json"
	// EditsFile holds the default table edits of a package.
	EditsFile = "meta_manipulations.json"
)

// DiscoveryError reports a package folder that could not be loaded.
type DiscoveryError struct {
	Package string
	Err     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("package %s: %v", e.Package, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

type rawOption struct {
	OptionName    string              `json:"OptionName"`
	Description   string              `json:"Description"`
	OptionFiles   map[string][]string `json:"OptionFiles"`
	FileSwaps     map[string]string   `json:"FileSwaps"`
	Manipulations []meta.TableEdit    `json:"Manipulations"`
}

type rawGroup struct {
	GroupName     string        `json:"GroupName"`
	Description   string        `json:"Description"`
	SelectionType SelectionType `json:"SelectionType"`
	Options       []rawOption   `json:"Options"`
}

type rawMeta struct {
	Name        string              `json:"Name"`
	Author      string              `json:"Author"`
	Version     string              `json:"Version"`
	Description string              `json:"Description"`
	Website     string              `json:"Website"`
	Files       map[string][]string `json:"Files"`
	FileSwaps   map[string]string   `json:"FileSwaps"`
	Groups      []rawGroup          `json:"Groups"`
}

// loader collects warnings while normalizing one folder.
type loader struct {
	dir      string
	warnings []error
}

// LoadPackage reads the package stored in dir. The folder name becomes the id.
func LoadPackage(dir string) (*Package, []error, error) {
	id := filepath.Base(dir)
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, nil, &DiscoveryError{Package: id, Err: fmt.Errorf("failed to read %s: %w", MetaFile, err)}
	}

	var raw rawMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, &DiscoveryError{Package: id, Err: fmt.Errorf("failed to parse %s: %w", MetaFile, err)}
	}
	if strings.TrimSpace(raw.Name) == "" {
		raw.Name = id
	}

	l := &loader{dir: dir}
	pkg := &Package{
		ID:          id,
		Dir:         dir,
		Name:        raw.Name,
		Author:      raw.Author,
		Version:     raw.Version,
		Description: raw.Description,
		Website:     raw.Website,
		Default: Contribution{
			Files: l.files(raw.Files),
			Swaps: l.swaps(raw.FileSwaps),
		},
	}

	edits, err := readEdits(filepath.Join(dir, EditsFile))
	if err != nil {
		return nil, nil, &DiscoveryError{Package: id, Err: err}
	}
	pkg.Default.Edits = l.edits(edits)

	names := make(map[string]bool)
	for i, rg := range raw.Groups {
		if rg.GroupName == "" || names[rg.GroupName] {
			l.warnings = append(l.warnings, fmt.Errorf("group %d: missing or duplicate name %q", i, rg.GroupName))
			continue
		}
		names[rg.GroupName] = true

		g := Group{Name: rg.GroupName, Description: rg.Description, Type: rg.SelectionType}
		switch g.Type {
		case SelectionSingle, SelectionMulti:
		case "":
			g.Type = SelectionSingle
		default:
			return nil, nil, &DiscoveryError{Package: id, Err: fmt.Errorf("group %s: unknown selection type %q", rg.GroupName, rg.SelectionType)}
		}
		for _, ro := range rg.Options {
			g.Options = append(g.Options, Option{
				Name:        ro.OptionName,
				Description: ro.Description,
				Contribution: Contribution{
					Files: l.files(ro.OptionFiles),
					Swaps: l.swaps(ro.FileSwaps),
					Edits: l.edits(ro.Manipulations),
				},
			})
		}
		pkg.Groups = append(pkg.Groups, g)
	}

	for _, w := range l.warnings {
		pkg.Warnings = append(pkg.Warnings, w.Error())
	}
	return pkg, l.warnings, nil
}

func readEdits(path string) ([]meta.TableEdit, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", EditsFile, err)
	}
	var edits []meta.TableEdit
	if err := json.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", EditsFile, err)
	}
	return edits, nil
}

func (l *loader) files(raw map[string][]string) map[gamedata.GamePath]gamedata.RelPath {
	out := make(map[gamedata.GamePath]gamedata.RelPath)
	for rawRel, targets := range raw {
		rel, err := gamedata.NewRelPath(rawRel)
		if err != nil {
			l.warnings = append(l.warnings, err)
			continue
		}
		if _, err := os.Stat(filepath.Join(l.dir, filepath.FromSlash(rel.String()))); err != nil {
			l.warnings = append(l.warnings, &gamedata.PathError{Path: rawRel, Reason: "file does not exist"})
			continue
		}
		for _, rawTarget := range targets {
			target, err := gamedata.NewGamePath(rawTarget)
			if err != nil {
				l.warnings = append(l.warnings, err)
				continue
			}
			if prev, ok := out[target]; ok && prev < rel {
				// two files claim the same path; keep one deterministically
				continue
			}
			out[target] = rel
		}
	}
	return out
}

func (l *loader) swaps(raw map[string]string) map[gamedata.GamePath]gamedata.GamePath {
	out := make(map[gamedata.GamePath]gamedata.GamePath)
	for rawFrom, rawTo := range raw {
		from, err := gamedata.NewGamePath(rawFrom)
		if err != nil {
			l.warnings = append(l.warnings, err)
			continue
		}
		to, err := gamedata.NewGamePath(rawTo)
		if err != nil {
			l.warnings = append(l.warnings, err)
			continue
		}
		out[from] = to
	}
	return out
}

func (l *loader) edits(raw []meta.TableEdit) []meta.TableEdit {
	var out []meta.TableEdit
	for _, e := range raw {
		if err := e.Validate(); err != nil {
			l.warnings = append(l.warnings, fmt.Errorf("edit %s: %w", e.Field(), err))
			continue
		}
		out = append(out, e)
	}
	return out
}
