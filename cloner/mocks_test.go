package cloner_test

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/weehong/appwrite-database-cloner/appwrite"
)

var errBoom = errors.New("boom")

// writtenDoc records one CreateDocument call on the mock instance.
type writtenDoc struct {
	CollectionID string
	DocumentID   string
	Data         map[string]any
	Permissions  []string
}

// mockInstance is an in-memory stand-in for one remote instance. Attributes
// and indexes created on it report available immediately, so readiness
// polling settles on the first listing.
type mockInstance struct {
	db    *appwrite.Database
	dbErr error

	collections []appwrite.Collection
	attrs       map[string][]appwrite.Attribute
	indexes     map[string][]appwrite.Index
	documents   map[string][]appwrite.Document

	listDocumentsErr  map[string]error
	createDocErrOn    map[string]error // keyed by the document's "name" field
	createCollBlocked map[string]error // CreateCollection failures by id
	deleteErr         error

	deleted []string
	written []writtenDoc
}

func newMockInstance(dbID, dbName string) *mockInstance {
	return &mockInstance{
		db:        &appwrite.Database{ID: dbID, Name: dbName, Enabled: true},
		attrs:     map[string][]appwrite.Attribute{},
		indexes:   map[string][]appwrite.Index{},
		documents: map[string][]appwrite.Document{},
	}
}

func (m *mockInstance) addCollection(id, name string, docs ...appwrite.Document) {
	m.collections = append(m.collections, appwrite.Collection{
		ID:      id,
		Name:    name,
		Enabled: true,
	})
	m.documents[id] = docs
}

func (m *mockInstance) GetDatabase(_ context.Context, dbID string) (*appwrite.Database, error) {
	if m.dbErr != nil {
		return nil, m.dbErr
	}

	if m.db == nil || m.db.ID != dbID {
		return nil, &appwrite.ServiceError{Message: "Database not found", Code: http.StatusNotFound}
	}

	return m.db, nil
}

func (m *mockInstance) ListCollections(
	context.Context, string, ...appwrite.Query,
) (*appwrite.CollectionList, error) {
	return &appwrite.CollectionList{
		Total:       int64(len(m.collections)),
		Collections: m.collections,
	}, nil
}

func (m *mockInstance) ListAttributes(
	_ context.Context, _, collID string, _ ...appwrite.Query,
) (*appwrite.AttributeList, error) {
	return &appwrite.AttributeList{
		Total:      int64(len(m.attrs[collID])),
		Attributes: m.attrs[collID],
	}, nil
}

func (m *mockInstance) ListIndexes(
	_ context.Context, _, collID string, _ ...appwrite.Query,
) (*appwrite.IndexList, error) {
	return &appwrite.IndexList{
		Total:   int64(len(m.indexes[collID])),
		Indexes: m.indexes[collID],
	}, nil
}

func (m *mockInstance) ListDocuments(
	_ context.Context, _, collID string, _ ...appwrite.Query,
) (*appwrite.DocumentList, error) {
	if err := m.listDocumentsErr[collID]; err != nil {
		return nil, err
	}

	return &appwrite.DocumentList{
		Total:     int64(len(m.documents[collID])),
		Documents: m.documents[collID],
	}, nil
}

func (m *mockInstance) CreateCollection(
	_ context.Context, _ string, col *appwrite.Collection,
) (*appwrite.Collection, error) {
	if err := m.createCollBlocked[col.ID]; err != nil {
		return nil, err
	}

	m.collections = append(m.collections, *col)

	return col, nil
}

func (m *mockInstance) CreateAttribute(
	_ context.Context, _, collID string, attr *appwrite.Attribute,
) error {
	created := *attr
	created.Status = appwrite.StatusAvailable
	m.attrs[collID] = append(m.attrs[collID], created)

	return nil
}

func (m *mockInstance) CreateIndex(_ context.Context, _, collID string, idx *appwrite.Index) error {
	created := *idx
	created.Status = appwrite.StatusAvailable
	m.indexes[collID] = append(m.indexes[collID], created)

	return nil
}

func (m *mockInstance) CreateDocument(
	_ context.Context, _, collID, docID string,
	data map[string]any, permissions []string,
) error {
	if name, ok := data["name"].(string); ok {
		if err := m.createDocErrOn[name]; err != nil {
			return err
		}
	}

	m.written = append(m.written, writtenDoc{
		CollectionID: collID,
		DocumentID:   docID,
		Data:         data,
		Permissions:  permissions,
	})

	doc := appwrite.Document{"$id": docID}
	for k, v := range data {
		doc[k] = v
	}

	m.documents[collID] = append(m.documents[collID], doc)

	return nil
}

func (m *mockInstance) DeleteCollection(_ context.Context, _, collID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}

	m.deleted = append(m.deleted, collID)
	m.collections = slices.DeleteFunc(m.collections, func(c appwrite.Collection) bool {
		return c.ID == collID
	})
	delete(m.documents, collID)

	return nil
}
