// Package assets finds the physical card instances that populate the decks.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
)

var ErrBadAssetName = errors.New("card asset name has no id")

// Source lists the instances available for a (type, color) deck.
type Source interface {
	ListCardInstances(ctx context.Context, t model.CardType, c model.Color) ([]model.CardRef, error)
}

// CatalogSource yields one instance per catalog entry, in the entry's color.
type CatalogSource struct {
	Catalog *catalog.Catalog
}

func (s CatalogSource) ListCardInstances(_ context.Context, t model.CardType, c model.Color) ([]model.CardRef, error) {
	var out []model.CardRef
	for _, card := range s.Catalog.ByKind(t) {
		if card.Color != c {
			continue
		}
		out = append(out, model.CardRef{Instance: card.Key(), Type: t, ID: card.ID})
	}
	return out, nil
}

var trailingID = regexp.MustCompile(`(\d+)$`)

var imageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// DirSource reads <Root>/<type>/<color>/<name>_<id>.<ext>. Type directories
// may use singular or plural names. The instance reference is the path
// relative to Root.
type DirSource struct {
	Root string
}

func (s DirSource) ListCardInstances(ctx context.Context, t model.CardType, c model.Color) ([]model.CardRef, error) {
	var out []model.CardRef

	typeDirs, err := fs.ReadDir(s.fsys(), ".")
	if err != nil {
		return nil, fmt.Errorf("read asset root %s: %w", s.Root, err)
	}
	for _, td := range typeDirs {
		if !td.IsDir() {
			continue
		}
		dirType, err := model.NormalizeCardType(td.Name())
		if err != nil || dirType != t {
			continue
		}
		colorDirs, err := fs.ReadDir(s.fsys(), td.Name())
		if err != nil {
			return nil, err
		}
		for _, cd := range colorDirs {
			if !cd.IsDir() {
				continue
			}
			dirColor, err := model.ParseColor(cd.Name())
			if err != nil || dirColor != c {
				continue
			}
			refs, err := s.list(ctx, path.Join(td.Name(), cd.Name()), t)
			if err != nil {
				return nil, err
			}
			out = append(out, refs...)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out, nil
}

func (s DirSource) list(ctx context.Context, dir string, t model.CardType) ([]model.CardRef, error) {
	entries, err := fs.ReadDir(s.fsys(), dir)
	if err != nil {
		return nil, err
	}
	var out []model.CardRef
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !imageExt[strings.ToLower(path.Ext(e.Name()))] {
			continue
		}
		id, err := ParseID(e.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Join(dir, e.Name()), err)
		}
		out = append(out, model.CardRef{Instance: path.Join(dir, e.Name()), Type: t, ID: id})
	}
	return out, nil
}

func (s DirSource) fsys() fs.FS {
	return os.DirFS(s.Root)
}

// Path maps an instance reference back to its file.
func (s DirSource) Path(ref model.CardRef) (string, error) {
	clean := path.Clean(ref.Instance)
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("invalid asset reference %q", ref.Instance)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

// ParseID takes the catalog id from the trailing number of a file name,
// so "Users_3.png" is id 3.
func ParseID(name string) (int, error) {
	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	m := trailingID.FindString(stem)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrBadAssetName, name)
	}
	return strconv.Atoi(m)
}
