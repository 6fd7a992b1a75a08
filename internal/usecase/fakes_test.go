package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/vbjayanti/cumulus/internal/domain/executions"
	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/domain/pdrs"
)

type fakeGranuleStore struct {
	mu      sync.Mutex
	byID    map[string]granules.Granule
	getErr  error
	saveErr error
	creates int
	updates int
	deletes []string
}

func newFakeGranuleStore(seed ...granules.Granule) *fakeGranuleStore {
	store := &fakeGranuleStore{byID: make(map[string]granules.Granule)}
	for _, g := range seed {
		store.byID[g.GranuleID] = cloneGranule(g)
	}
	return store
}

// cloneGranule severs the Files backing array so the fake behaves like a
// store that serializes records instead of sharing memory with callers.
func cloneGranule(g granules.Granule) granules.Granule {
	if g.Files != nil {
		files := make([]granules.File, len(g.Files))
		copy(files, g.Files)
		g.Files = files
	}
	return g
}

func (f *fakeGranuleStore) Create(_ context.Context, g granules.Granule) (granules.Granule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return granules.Granule{}, f.saveErr
	}
	f.creates++
	f.byID[g.GranuleID] = cloneGranule(g)
	return g, nil
}

func (f *fakeGranuleStore) Get(_ context.Context, granuleID string) (granules.Granule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return granules.Granule{}, f.getErr
	}
	g, ok := f.byID[granuleID]
	if !ok {
		return granules.Granule{}, granules.ErrNotFound
	}
	return cloneGranule(g), nil
}

func (f *fakeGranuleStore) Update(_ context.Context, g granules.Granule) (granules.Granule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return granules.Granule{}, f.saveErr
	}
	if _, ok := f.byID[g.GranuleID]; !ok {
		return granules.Granule{}, granules.ErrNotFound
	}
	f.updates++
	f.byID[g.GranuleID] = cloneGranule(g)
	return g, nil
}

func (f *fakeGranuleStore) Delete(_ context.Context, granuleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[granuleID]; !ok {
		return granules.ErrNotFound
	}
	delete(f.byID, granuleID)
	f.deletes = append(f.deletes, granuleID)
	return nil
}

func (f *fakeGranuleStore) List(_ context.Context, _ GranuleListFilter) ([]granules.Granule, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]granules.Granule, 0, len(f.byID))
	for _, g := range f.byID {
		out = append(out, cloneGranule(g))
	}
	return out, len(out), nil
}

func (f *fakeGranuleStore) StatusTally(_ context.Context, pdrName string) (pdrs.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats pdrs.Stats
	for _, g := range f.byID {
		if g.PdrName != pdrName {
			continue
		}
		switch g.Status {
		case granules.StatusRunning:
			stats.Running++
		case granules.StatusCompleted:
			stats.Completed++
		case granules.StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

type fakeCollectionStore struct {
	collections map[string]granules.Collection
}

func newFakeCollectionStore(seed ...granules.Collection) *fakeCollectionStore {
	store := &fakeCollectionStore{collections: make(map[string]granules.Collection)}
	for _, c := range seed {
		store.collections[c.ID()] = c
	}
	return store
}

func (f *fakeCollectionStore) Get(_ context.Context, name, version string) (granules.Collection, error) {
	c, ok := f.collections[granules.CollectionID(name, version)]
	if !ok {
		return granules.Collection{}, granules.ErrNotFound
	}
	return c, nil
}

type fakeExecutionStore struct {
	mu    sync.Mutex
	byArn map[string]executions.Execution
}

func newFakeExecutionStore() *fakeExecutionStore {
	return &fakeExecutionStore{byArn: make(map[string]executions.Execution)}
}

func (f *fakeExecutionStore) Save(_ context.Context, e executions.Execution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byArn[e.Arn] = e
	return nil
}

func (f *fakeExecutionStore) Get(_ context.Context, arn string) (executions.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byArn[arn]
	if !ok {
		return executions.Execution{}, executions.ErrNotFound
	}
	return e, nil
}

type fakePdrStore struct {
	mu     sync.Mutex
	byName map[string]pdrs.Pdr
}

func newFakePdrStore() *fakePdrStore {
	return &fakePdrStore{byName: make(map[string]pdrs.Pdr)}
}

func (f *fakePdrStore) Save(_ context.Context, p pdrs.Pdr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName[p.PdrName] = p
	return nil
}

func (f *fakePdrStore) Get(_ context.Context, pdrName string) (pdrs.Pdr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byName[pdrName]
	if !ok {
		return pdrs.Pdr{}, pdrs.ErrNotFound
	}
	return p, nil
}

// fakeObjectStore keys objects by "bucket/key". Failure injection is per
// operation and per key.
type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	copyErrOn string
	putErr    error
	copies    []string
	deletions []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

func (f *fakeObjectStore) put(bucket, key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey(bucket, key)] = body
}

func (f *fakeObjectStore) has(bucket, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectKey(bucket, key)]
	return ok
}

func (f *fakeObjectStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectKey(bucket, key)]
	return ok, nil
}

func (f *fakeObjectStore) Copy(_ context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := objectKey(srcBucket, srcKey)
	if src == f.copyErrOn {
		return fmt.Errorf("injected copy failure for %s", src)
	}
	body, ok := f.objects[src]
	if !ok {
		return fmt.Errorf("source %s does not exist", src)
	}
	f.objects[objectKey(dstBucket, dstKey)] = body
	f.copies = append(f.copies, src)
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectKey(bucket, key))
	f.deletions = append(f.deletions, objectKey(bucket, key))
	return nil
}

func (f *fakeObjectStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[objectKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("object %s does not exist", objectKey(bucket, key))
	}
	return body, nil
}

func (f *fakeObjectStore) Put(_ context.Context, bucket, key string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[objectKey(bucket, key)] = body
	return nil
}

type startedWorkflow struct {
	Workflow  string
	GranuleID string
}

type fakeRunner struct {
	mu      sync.Mutex
	arn     string
	err     error
	started []startedWorkflow
}

func (f *fakeRunner) Start(_ context.Context, start WorkflowStart) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.started = append(f.started, startedWorkflow{Workflow: start.Workflow, GranuleID: start.Granule.GranuleID})
	if f.arn == "" {
		return "arn:aws:states:us-east-1:123:execution:wf:1", nil
	}
	return f.arn, nil
}

type fakeCatalog struct {
	err       error
	deleted   []string
	published map[string][]byte
}

func (f *fakeCatalog) DeleteGranule(_ context.Context, granuleID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, granuleID)
	return nil
}

func (f *fakeCatalog) PublishGranule(_ context.Context, granuleID string, doc []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[granuleID] = doc
	return nil
}

type fakeBulkStore struct {
	mu      sync.Mutex
	byID    map[string]BulkOperation
	saveErr error
}

func newFakeBulkStore() *fakeBulkStore {
	return &fakeBulkStore{byID: make(map[string]BulkOperation)}
}

func (f *fakeBulkStore) Save(_ context.Context, op BulkOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byID[op.ID] = op
	return nil
}

func (f *fakeBulkStore) Get(_ context.Context, id string) (BulkOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.byID[id]
	if !ok {
		return BulkOperation{}, granules.ErrNotFound
	}
	return op, nil
}

type fakeMetrics struct {
	ids []string
	err error
}

func (f *fakeMetrics) GranuleIDs(_ context.Context, _ string, _ map[string]any) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

func newTestService(deps GranuleServiceDeps) *GranuleService {
	if deps.Granules == nil {
		deps.Granules = newFakeGranuleStore()
	}
	if deps.Collections == nil {
		deps.Collections = newFakeCollectionStore()
	}
	if deps.Executions == nil {
		deps.Executions = newFakeExecutionStore()
	}
	if deps.Pdrs == nil {
		deps.Pdrs = newFakePdrStore()
	}
	if deps.Objects == nil {
		deps.Objects = newFakeObjectStore()
	}
	if deps.Workflows == nil {
		deps.Workflows = &fakeRunner{}
	}
	if deps.Catalog == nil {
		deps.Catalog = &fakeCatalog{}
	}
	if deps.BulkOps == nil {
		deps.BulkOps = newFakeBulkStore()
	}
	if deps.IngestWorkflow == "" {
		deps.IngestWorkflow = "IngestGranule"
	}
	return NewGranuleService(deps)
}
