// Package importer converts third-party export files (CSV or ZIP archives
// of CSVs) into persisted domain entities within one organization.
// Clients, projects, tasks, tags and placeholder users are deduplicated by
// natural key; time entries are not deduplicated, so re-importing the same
// file creates the entries again.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

// Error is the stable failure type for structurally invalid import input:
// wrong container format, missing columns, malformed fields. The message
// is safe to surface to API callers; the cause is preserved for logs.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func wrapError(err error, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Err: err}
}

// Report counts the entities one import run actually created. Reused
// entities are never counted.
type Report struct {
	UsersCreated       int `json:"users_created"`
	ClientsCreated     int `json:"clients_created"`
	ProjectsCreated    int `json:"projects_created"`
	TasksCreated       int `json:"tasks_created"`
	TagsCreated        int `json:"tags_created"`
	TimeEntriesCreated int `json:"time_entries_created"`
}

// Importer is the contract every format implements. An instance is
// single-use: Init binds it to one organization and its resolution caches
// are organization-scoped.
type Importer interface {
	Init(org model.Organization) error
	ImportData(ctx context.Context, data []byte, tz *time.Location) error
	GetReport() (Report, error)
}

// Constructor builds an importer over a store.
type Constructor func(st *store.Store) Importer

// registry maps format keys to constructors. Static, resolved at startup.
var registry = map[string]Constructor{
	"toggl_time_entries":     func(st *store.Store) Importer { return &togglTimeEntriesImporter{base: base{st: st}} },
	"toggl_data_importer":    func(st *store.Store) Importer { return &togglDataImporter{base: base{st: st}} },
	"clockify_time_entries":  func(st *store.Store) Importer { return &clockifyTimeEntriesImporter{base: base{st: st}} },
	"clockify_projects":      func(st *store.Store) Importer { return &clockifyProjectsImporter{base: base{st: st}} },
	"hourglass":              func(st *store.Store) Importer { return &nativeImporter{base: base{st: st}} },
	"harvest_projects":       func(st *store.Store) Importer { return &harvestProjectsImporter{base: base{st: st}} },
	"harvest_time_entries":   func(st *store.Store) Importer { return &harvestTimeEntriesImporter{base: base{st: st}} },
	"harvest_clients":        func(st *store.Store) Importer { return &harvestClientsImporter{base: base{st: st}} },
	"generic_projects":       func(st *store.Store) Importer { return &genericProjectsImporter{base: base{st: st}} },
	"generic_time_entries":   func(st *store.Store) Importer { return &genericTimeEntriesImporter{base: base{st: st}} },
}

// Keys returns the registered format keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Create builds the importer registered under key.
func Create(key string, st *store.Store) (Importer, error) {
	ctor, ok := registry[key]
	if !ok {
		return nil, errorf("unknown importer type %q", key)
	}
	return ctor(st), nil
}

// base carries the importer lifecycle shared by every format.
type base struct {
	st       *store.Store
	org      model.Organization
	report   Report
	bound    bool
	imported bool
}

func (b *base) Init(org model.Organization) error {
	if b.bound {
		return errorf("importer already bound to organization %q", b.org.ID)
	}
	b.org = org
	b.bound = true
	return nil
}

func (b *base) GetReport() (Report, error) {
	if !b.imported {
		return Report{}, errorf("no completed import to report on")
	}
	return b.report, nil
}

func (b *base) requireBound() error {
	if !b.bound {
		return errorf("importer not initialized with an organization")
	}
	return nil
}

// run executes the import body inside one transaction with a fresh
// resolver. Nothing is committed if the body fails.
func (b *base) run(ctx context.Context, body func(r *resolver) error) error {
	if err := b.requireBound(); err != nil {
		return err
	}

	report := Report{}
	err := b.st.InTx(ctx, func(tx *store.Store) error {
		r := newResolver(tx, b.org, &report)
		return body(r)
	})
	if err != nil {
		return err
	}

	b.report = report
	b.imported = true
	return nil
}

// Service dispatches imports and serializes runs per organization so two
// concurrent imports cannot race get-or-create on the same natural keys.
type Service struct {
	st *store.Store

	mu       sync.Mutex
	orgLocks map[string]*sync.Mutex
}

// NewService creates an import service over the store.
func NewService(st *store.Store) *Service {
	return &Service{st: st, orgLocks: make(map[string]*sync.Mutex)}
}

func (s *Service) lockFor(orgID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.orgLocks[orgID]
	if !ok {
		l = &sync.Mutex{}
		s.orgLocks[orgID] = l
	}
	return l
}

// Import runs one import of data in the given format against the
// organization. Failures are logged and returned as *Error.
func (s *Service) Import(ctx context.Context, org model.Organization, key string, data []byte, tz *time.Location) (Report, error) {
	imp, err := Create(key, s.st)
	if err != nil {
		return Report{}, err
	}
	if err := imp.Init(org); err != nil {
		return Report{}, err
	}

	lock := s.lockFor(org.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := imp.ImportData(ctx, data, tz); err != nil {
		logger.Error("import failed",
			logger.F("organization", org.ID),
			logger.F("type", key),
			logger.F("error", err))
		var impErr *Error
		if errors.As(err, &impErr) {
			return Report{}, impErr
		}
		return Report{}, wrapError(err, "import of type %q failed", key)
	}

	report, err := imp.GetReport()
	if err != nil {
		return Report{}, err
	}

	logger.Info("import finished",
		logger.F("organization", org.ID),
		logger.F("type", key),
		logger.F("time_entries", report.TimeEntriesCreated),
		logger.F("projects", report.ProjectsCreated))
	return report, nil
}
