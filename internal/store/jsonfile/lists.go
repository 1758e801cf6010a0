package jsonfile

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/validate"
)

// ListsFile is the root JSON structure stored on disk.
type ListsFile struct {
	Active string                     `json:"active"`
	Lists  map[string][]staple.Staple `json:"lists"`
}

// legacyStaplesFile is the single-list format migrated into ListsFile.
type legacyStaplesFile struct {
	Staples []staple.Staple `json:"staples"`
}

// ListStore implements staple.Store using a JSON file for persistence. When
// the lists file does not exist yet, staples from the legacy staples file are
// migrated into the default list. The legacy file is left in place.
type ListStore struct {
	path       string
	legacyPath string
	mu         sync.Mutex
}

// NewListStore creates a list store at path. legacyPath may be empty.
func NewListStore(path, legacyPath string) *ListStore {
	return &ListStore{path: path, legacyPath: legacyPath}
}

// Path returns the lists file location.
func (s *ListStore) Path() string {
	return s.path
}

func (s *ListStore) ListNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.names(), nil
}

func (s *ListStore) Active(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return "", err
	}
	return file.Active, nil
}

func (s *ListStore) SetActive(ctx context.Context, name string) error {
	return s.update(func(file *ListsFile) error {
		if _, ok := file.Lists[name]; !ok {
			return listNotFound(name)
		}
		file.Active = name
		return nil
	})
}

func (s *ListStore) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	return s.update(func(file *ListsFile) error {
		if name == "" {
			return validate.Errorf("list name is required")
		}
		if _, ok := file.Lists[name]; ok {
			return validate.Errorf("list %q already exists", name)
		}
		file.Lists[name] = []staple.Staple{}
		return nil
	})
}

func (s *ListStore) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	return s.update(func(file *ListsFile) error {
		items, ok := file.Lists[oldName]
		if !ok {
			return listNotFound(oldName)
		}
		if newName == "" {
			return validate.Errorf("list name is required")
		}
		if _, exists := file.Lists[newName]; exists {
			return validate.Errorf("list %q already exists", newName)
		}

		delete(file.Lists, oldName)
		file.Lists[newName] = items
		if file.Active == oldName {
			file.Active = newName
		}
		return nil
	})
}

func (s *ListStore) Delete(ctx context.Context, name string) error {
	return s.update(func(file *ListsFile) error {
		if _, ok := file.Lists[name]; !ok {
			return listNotFound(name)
		}
		if len(file.Lists) == 1 {
			return validate.Errorf("cannot delete the last list %q", name)
		}

		delete(file.Lists, name)
		if file.Active == name {
			file.Active = file.names()[0]
		}
		return nil
	})
}

func (s *ListStore) Staples(ctx context.Context, list string) ([]staple.Staple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	_, items, err := file.resolve(list)
	if err != nil {
		return nil, err
	}

	return slices.Clone(items), nil
}

func (s *ListStore) Add(ctx context.Context, list string, st staple.Staple) error {
	if err := st.Validate(); err != nil {
		return err
	}

	return s.update(func(file *ListsFile) error {
		name, items, err := file.resolve(list)
		if err != nil {
			return err
		}
		for _, existing := range items {
			if existing.Name == st.Name {
				return validate.Errorf("staple %q already exists in list %q", st.Name, name)
			}
		}
		file.Lists[name] = append(items, st)
		return nil
	})
}

func (s *ListStore) Update(ctx context.Context, list, stapleName string, patch staple.Patch) (staple.Staple, error) {
	var updated staple.Staple

	err := s.update(func(file *ListsFile) error {
		name, items, err := file.resolve(list)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(items, func(st staple.Staple) bool { return st.Name == stapleName })
		if idx < 0 {
			return stapleNotFound(stapleName, name)
		}

		next := patch.Apply(items[idx])
		if err := next.Validate(); err != nil {
			return err
		}

		items[idx] = next
		updated = next
		return nil
	})

	return updated, err
}

func (s *ListStore) Remove(ctx context.Context, list, identifier string) error {
	return s.update(func(file *ListsFile) error {
		name, items, err := file.resolve(list)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(items, func(st staple.Staple) bool { return st.Matches(identifier) })
		if idx < 0 {
			return stapleNotFound(identifier, name)
		}

		file.Lists[name] = slices.Delete(items, idx, idx+1)
		return nil
	})
}

func (s *ListStore) Move(ctx context.Context, from, to, identifier string) error {
	return s.update(func(file *ListsFile) error {
		fromName, fromItems, err := file.resolve(from)
		if err != nil {
			return err
		}
		toName, toItems, err := file.resolve(to)
		if err != nil {
			return err
		}
		if fromName == toName {
			return validate.Errorf("source and destination are both %q", fromName)
		}

		idx := slices.IndexFunc(fromItems, func(st staple.Staple) bool { return st.Matches(identifier) })
		if idx < 0 {
			return stapleNotFound(identifier, fromName)
		}

		moving := fromItems[idx]
		for _, existing := range toItems {
			if existing.Name == moving.Name {
				return validate.Errorf("staple %q already exists in list %q", moving.Name, toName)
			}
		}

		file.Lists[fromName] = slices.Delete(fromItems, idx, idx+1)
		file.Lists[toName] = append(toItems, moving)
		return nil
	})
}

// update runs fn against the loaded file and saves it when fn succeeds.
func (s *ListStore) update(fn func(file *ListsFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	if err := fn(&file); err != nil {
		return err
	}

	return writeFile(s.path, file)
}

// load reads the lists file, falling back to the legacy staples file and
// then to a single empty default list.
func (s *ListStore) load() (ListsFile, error) {
	var file ListsFile
	found, err := readFile(s.path, &file)
	if err != nil {
		return ListsFile{}, err
	}

	if !found {
		file = ListsFile{
			Active: staple.DefaultListName,
			Lists:  map[string][]staple.Staple{staple.DefaultListName: {}},
		}

		if s.legacyPath != "" {
			var legacy legacyStaplesFile
			ok, err := readFile(s.legacyPath, &legacy)
			if err != nil {
				return ListsFile{}, err
			}
			if ok && legacy.Staples != nil {
				file.Lists[staple.DefaultListName] = legacy.Staples
			}
		}

		if err := writeFile(s.path, file); err != nil {
			return ListsFile{}, err
		}
	}

	file.normalize()
	return file, nil
}

// normalize repairs files edited by hand: a missing list map, nil lists, or
// an active list that no longer exists.
func (f *ListsFile) normalize() {
	if len(f.Lists) == 0 {
		f.Lists = map[string][]staple.Staple{staple.DefaultListName: {}}
	}
	for name, items := range f.Lists {
		if items == nil {
			f.Lists[name] = []staple.Staple{}
		}
	}
	if _, ok := f.Lists[f.Active]; !ok {
		f.Active = f.names()[0]
	}
}

func (f *ListsFile) names() []string {
	names := make([]string, 0, len(f.Lists))
	for name := range f.Lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve maps an empty list name to the active list.
func (f *ListsFile) resolve(list string) (string, []staple.Staple, error) {
	if list == "" {
		list = f.Active
	}
	items, ok := f.Lists[list]
	if !ok {
		return "", nil, listNotFound(list)
	}
	return list, items, nil
}

func listNotFound(name string) error {
	return validate.Errorf("list %q not found", name)
}

func stapleNotFound(identifier, list string) error {
	return validate.Errorf("staple %q not found in list %q", identifier, list)
}

var _ staple.Store = (*ListStore)(nil)
