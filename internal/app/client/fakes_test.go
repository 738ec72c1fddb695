package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"lunasync/internal/domain/record"
)

// fakeTransport эмулирует сервер документов в памяти
type fakeTransport struct {
	mu        sync.Mutex
	now       int64
	nextID    int
	docs      map[record.Collection]map[string]RemoteRecord
	refs      map[string]string
	pushes    []fakePush
	pulls     []fakePull
	healthErr error
	pullErr   error
	onPush    func(collection record.Collection, doc PushDoc) error
	onPull    func(collection record.Collection)
	// noClock эмулирует сервер, не сообщающий свое время
	noClock bool
}

type fakePush struct {
	Collection record.Collection
	Doc        PushDoc
}

type fakePull struct {
	Collection record.Collection
	Since      int64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		now:  1000,
		docs: make(map[record.Collection]map[string]RemoteRecord),
		refs: make(map[string]string),
	}
}

func (f *fakeTransport) put(collection record.Collection, doc RemoteRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]RemoteRecord)
	}
	f.docs[collection][doc.ID] = doc
}

// write сохраняет документ так, как это сделало бы другое устройство:
// с очередной серверной меткой времени
func (f *fakeTransport) write(collection record.Collection, id string, fields map[string]any) RemoteRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]RemoteRecord)
	}
	f.now++
	doc := RemoteRecord{ID: id, Fields: fields, DeviceID: "device_other", CreatedAt: f.now, UpdatedAt: f.now}
	f.docs[collection][id] = doc
	return doc
}

func (f *fakeTransport) serverTime() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTransport) doc(collection record.Collection, id string) (RemoteRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[collection][id]
	return doc, ok
}

func (f *fakeTransport) pushLog() []fakePush {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakePush(nil), f.pushes...)
}

func (f *fakeTransport) pullLog() []fakePull {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakePull(nil), f.pulls...)
}

func (f *fakeTransport) Push(_ context.Context, collection record.Collection, doc PushDoc) (RemoteRecord, error) {
	if f.onPush != nil {
		if err := f.onPush(collection, doc); err != nil {
			return RemoteRecord{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushes = append(f.pushes, fakePush{Collection: collection, Doc: doc})
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]RemoteRecord)
	}
	f.now++

	id := doc.ID
	if id == "" {
		key := fmt.Sprintf("%s|%s|%s", collection, doc.DeviceID, doc.ClientRef)
		if existing, ok := f.refs[key]; ok {
			return f.docs[collection][existing], nil
		}
		f.nextID++
		id = fmt.Sprintf("srv-%d", f.nextID)
		f.refs[key] = id
	}

	current, exists := f.docs[collection][id]
	if !exists {
		current = RemoteRecord{ID: id, CreatedAt: f.now, Fields: map[string]any{}}
	}
	merged := make(map[string]any, len(current.Fields)+len(doc.Fields))
	for k, v := range current.Fields {
		merged[k] = v
	}
	for k, v := range doc.Fields {
		merged[k] = v
	}
	current.Fields = merged
	current.DeviceID = doc.DeviceID
	current.UpdatedAt = f.now
	f.docs[collection][id] = current

	return RemoteRecord{ID: id, CreatedAt: current.CreatedAt, UpdatedAt: current.UpdatedAt}, nil
}

func (f *fakeTransport) Pull(_ context.Context, collection record.Collection, since int64) (PullPage, error) {
	if f.onPull != nil {
		f.onPull(collection)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pulls = append(f.pulls, fakePull{Collection: collection, Since: since})
	if f.pullErr != nil {
		return PullPage{}, f.pullErr
	}

	out := make([]RemoteRecord, 0)
	for _, doc := range f.docs[collection] {
		if doc.UpdatedAt > since {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})

	page := PullPage{Records: out}
	if !f.noClock {
		page.ServerTime = f.now
	}
	return page, nil
}

func (f *fakeTransport) HealthCheck(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthErr
}

type fakeConn struct {
	online atomic.Bool
}

func newFakeConn(online bool) *fakeConn {
	c := &fakeConn{}
	c.online.Store(online)
	return c
}

func (c *fakeConn) Online() bool {
	return c.online.Load()
}

type notification struct {
	Msg      string
	Severity Severity
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(msg string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{Msg: msg, Severity: severity})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}
