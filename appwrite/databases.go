package appwrite

import (
	"context"
	"net/http"

	"github.com/weehong/appwrite-database-cloner/errors"
)

// GetDatabase resolves a database by id.
func (c *Client) GetDatabase(ctx context.Context, dbID string) (*Database, error) {
	db := &Database{}

	err := c.call(ctx, http.MethodGet, "/databases/"+dbID, nil, nil, db)
	if err != nil {
		return nil, errors.Wrapf(err, "get database %q", dbID)
	}

	return db, nil
}

// ListCollections lists one page of collections.
func (c *Client) ListCollections(
	ctx context.Context, dbID string, queries ...Query,
) (*CollectionList, error) {
	list := &CollectionList{}

	err := c.call(ctx, http.MethodGet, "/databases/"+dbID+"/collections", queries, nil, list)
	if err != nil {
		return nil, errors.Wrap(err, "list collections")
	}

	return list, nil
}

// CreateCollection creates a collection shell reusing the given identifier.
func (c *Client) CreateCollection(
	ctx context.Context, dbID string, col *Collection,
) (*Collection, error) {
	body := map[string]any{
		"collectionId":     col.ID,
		"name":             col.Name,
		"permissions":      col.Permissions,
		"documentSecurity": col.DocumentSecurity,
		"enabled":          col.Enabled,
	}

	created := &Collection{}

	err := c.call(ctx, http.MethodPost, "/databases/"+dbID+"/collections", nil, body, created)
	if err != nil {
		return nil, errors.Wrapf(err, "create collection %q", col.ID)
	}

	return created, nil
}

// DeleteCollection deletes a collection and all of its documents.
func (c *Client) DeleteCollection(ctx context.Context, dbID, collID string) error {
	err := c.call(ctx, http.MethodDelete, "/databases/"+dbID+"/collections/"+collID, nil, nil, nil)

	return errors.Wrapf(err, "delete collection %q", collID)
}

// ListAttributes lists one page of a collection's attributes.
func (c *Client) ListAttributes(
	ctx context.Context, dbID, collID string, queries ...Query,
) (*AttributeList, error) {
	list := &AttributeList{}

	err := c.call(ctx, http.MethodGet,
		"/databases/"+dbID+"/collections/"+collID+"/attributes", queries, nil, list)
	if err != nil {
		return nil, errors.Wrap(err, "list attributes")
	}

	return list, nil
}

// CreateAttribute submits the type-specific creation call for the attribute.
// The child side of a two-way relationship is created by the service itself
// and is rejected here.
func (c *Client) CreateAttribute(ctx context.Context, dbID, collID string, attr *Attribute) error {
	if attr.IsChildRelationship() {
		return errors.Errorf("attribute %q is a child-side relationship", attr.Key)
	}

	base := map[string]any{
		"key":      attr.Key,
		"required": attr.Required,
		"array":    attr.Array,
	}
	if attr.Default != nil {
		base["default"] = attr.Default
	}

	var path string

	switch attr.Kind() {
	case KindString:
		path = "string"
		base["size"] = attr.Size
	case KindInteger:
		path = "integer"
		if attr.Min != nil {
			base["min"] = int64(*attr.Min)
		}
		if attr.Max != nil {
			base["max"] = int64(*attr.Max)
		}
	case KindFloat:
		path = "float"
		if attr.Min != nil {
			base["min"] = *attr.Min
		}
		if attr.Max != nil {
			base["max"] = *attr.Max
		}
	case KindBoolean:
		path = "boolean"
	case KindDatetime:
		path = "datetime"
	case KindEmail:
		path = "email"
	case KindIP:
		path = "ip"
	case KindURL:
		path = "url"
	case KindEnum:
		path = "enum"
		base["elements"] = attr.Elements
	case KindRelationship:
		path = "relationship"
		base = map[string]any{
			"relatedCollectionId": attr.RelatedCollection,
			"type":                attr.RelationType,
			"twoWay":              attr.TwoWay,
			"key":                 attr.Key,
			"twoWayKey":           attr.TwoWayKey,
			"onDelete":            attr.OnDelete,
		}
	default:
		return errors.Errorf("unsupported attribute type %q", attr.Type)
	}

	err := c.call(ctx, http.MethodPost,
		"/databases/"+dbID+"/collections/"+collID+"/attributes/"+path, nil, base, nil)

	return errors.Wrapf(err, "create %s attribute %q", attr.Kind(), attr.Key)
}

// ListIndexes lists one page of a collection's indexes.
func (c *Client) ListIndexes(
	ctx context.Context, dbID, collID string, queries ...Query,
) (*IndexList, error) {
	list := &IndexList{}

	err := c.call(ctx, http.MethodGet,
		"/databases/"+dbID+"/collections/"+collID+"/indexes", queries, nil, list)
	if err != nil {
		return nil, errors.Wrap(err, "list indexes")
	}

	return list, nil
}

// CreateIndex submits an index creation call.
func (c *Client) CreateIndex(ctx context.Context, dbID, collID string, idx *Index) error {
	body := map[string]any{
		"key":        idx.Key,
		"type":       idx.Type,
		"attributes": idx.Attributes,
		"orders":     idx.Orders,
	}

	err := c.call(ctx, http.MethodPost,
		"/databases/"+dbID+"/collections/"+collID+"/indexes", nil, body, nil)

	return errors.Wrapf(err, "create index %q", idx.Key)
}

// ListDocuments lists one page of a collection's documents.
func (c *Client) ListDocuments(
	ctx context.Context, dbID, collID string, queries ...Query,
) (*DocumentList, error) {
	list := &DocumentList{}

	err := c.call(ctx, http.MethodGet,
		"/databases/"+dbID+"/collections/"+collID+"/documents", queries, nil, list)
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}

	return list, nil
}

// CreateDocument creates a document with the given identifier and sanitized
// field map.
func (c *Client) CreateDocument(
	ctx context.Context,
	dbID, collID, docID string,
	data map[string]any,
	permissions []string,
) error {
	body := map[string]any{
		"documentId": docID,
		"data":       data,
	}
	if len(permissions) != 0 {
		body["permissions"] = permissions
	}

	err := c.call(ctx, http.MethodPost,
		"/databases/"+dbID+"/collections/"+collID+"/documents", nil, body, nil)

	return errors.Wrapf(err, "create document %q", docID)
}
