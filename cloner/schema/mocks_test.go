package schema_test

import (
	"context"
	"fmt"

	"github.com/weehong/appwrite-database-cloner/appwrite"
)

// mockSource is a test double for the SourceAPI interface. It serves its
// backing slices in one page.
type mockSource struct {
	attrs   []appwrite.Attribute
	indexes []appwrite.Index

	attrsErr   error
	indexesErr error
}

func (m *mockSource) ListAttributes(
	context.Context, string, string, ...appwrite.Query,
) (*appwrite.AttributeList, error) {
	if m.attrsErr != nil {
		return nil, m.attrsErr
	}

	return &appwrite.AttributeList{
		Total:      int64(len(m.attrs)),
		Attributes: m.attrs,
	}, nil
}

func (m *mockSource) ListIndexes(
	context.Context, string, string, ...appwrite.Query,
) (*appwrite.IndexList, error) {
	if m.indexesErr != nil {
		return nil, m.indexesErr
	}

	return &appwrite.IndexList{
		Total:   int64(len(m.indexes)),
		Indexes: m.indexes,
	}, nil
}

// mockDest is a test double for the DestAPI interface. Created entities start
// processing and become available after the configured number of listing
// calls; every operation is appended to calls so ordering can be asserted.
type mockDest struct {
	createCollectionErr error
	createAttrErr       map[string]error
	createIndexErr      map[string]error

	// listings remaining until the entity reports available
	attrReadyAfter  map[string]int
	indexReadyAfter map[string]int

	listAttrsErr error

	attrs   []appwrite.Attribute
	indexes []appwrite.Index

	calls []string
}

func (m *mockDest) CreateCollection(
	_ context.Context, _ string, col *appwrite.Collection,
) (*appwrite.Collection, error) {
	m.calls = append(m.calls, "create-collection:"+col.ID)

	if m.createCollectionErr != nil {
		return nil, m.createCollectionErr
	}

	return col, nil
}

func (m *mockDest) CreateAttribute(
	_ context.Context, _, _ string, attr *appwrite.Attribute,
) error {
	m.calls = append(m.calls, "create-attribute:"+attr.Key)

	if err := m.createAttrErr[attr.Key]; err != nil {
		return err
	}

	created := *attr
	created.Status = appwrite.StatusProcessing
	m.attrs = append(m.attrs, created)

	return nil
}

func (m *mockDest) CreateIndex(_ context.Context, _, _ string, idx *appwrite.Index) error {
	m.calls = append(m.calls, "create-index:"+idx.Key)

	if err := m.createIndexErr[idx.Key]; err != nil {
		return err
	}

	created := *idx
	created.Status = appwrite.StatusProcessing
	m.indexes = append(m.indexes, created)

	return nil
}

func (m *mockDest) ListAttributes(
	context.Context, string, string, ...appwrite.Query,
) (*appwrite.AttributeList, error) {
	m.calls = append(m.calls, "list-attributes")

	if m.listAttrsErr != nil {
		return nil, m.listAttrsErr
	}

	for i := range m.attrs {
		key := m.attrs[i].Key

		remaining, ok := m.attrReadyAfter[key]
		if !ok || remaining <= 0 {
			m.attrs[i].Status = appwrite.StatusAvailable
		} else {
			m.attrReadyAfter[key] = remaining - 1
		}
	}

	return &appwrite.AttributeList{
		Total:      int64(len(m.attrs)),
		Attributes: m.attrs,
	}, nil
}

func (m *mockDest) ListIndexes(
	context.Context, string, string, ...appwrite.Query,
) (*appwrite.IndexList, error) {
	m.calls = append(m.calls, "list-indexes")

	for i := range m.indexes {
		key := m.indexes[i].Key

		remaining, ok := m.indexReadyAfter[key]
		if !ok || remaining <= 0 {
			m.indexes[i].Status = appwrite.StatusAvailable
		} else {
			m.indexReadyAfter[key] = remaining - 1
		}
	}

	return &appwrite.IndexList{
		Total:   int64(len(m.indexes)),
		Indexes: m.indexes,
	}, nil
}

// stringAttr is a minimal available string attribute definition.
func stringAttr(key string) appwrite.Attribute {
	return appwrite.Attribute{
		Key:    key,
		Type:   appwrite.KindString,
		Status: appwrite.StatusAvailable,
		Size:   256,
	}
}

func keyIndex(key string, attrs ...string) appwrite.Index {
	return appwrite.Index{
		Key:        key,
		Type:       "key",
		Status:     appwrite.StatusAvailable,
		Attributes: attrs,
	}
}

var errBoom = fmt.Errorf("boom")
