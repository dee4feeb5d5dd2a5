package appwrite

// Attribute readiness statuses reported by the service.
const (
	StatusAvailable  = "available"
	StatusProcessing = "processing"
)

// Attribute kinds. The service encodes email, ip, url, and enum as string
// attributes with a format marker; Kind folds that back into one enumeration.
const (
	KindString       = "string"
	KindInteger      = "integer"
	KindFloat        = "double"
	KindBoolean      = "boolean"
	KindDatetime     = "datetime"
	KindEmail        = "email"
	KindIP           = "ip"
	KindURL          = "url"
	KindEnum         = "enum"
	KindRelationship = "relationship"
)

// Relationship sides. The child side is auto-created by the service when the
// parent side is created.
const (
	SideParent = "parent"
	SideChild  = "child"
)

// Database is a remote database.
type Database struct {
	ID      string `json:"$id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Collection is a named container of documents with a declared schema.
type Collection struct {
	ID               string   `json:"$id"`
	DatabaseID       string   `json:"databaseId"`
	Name             string   `json:"name"`
	Permissions      []string `json:"$permissions"`
	DocumentSecurity bool     `json:"documentSecurity"`
	Enabled          bool     `json:"enabled"`
}

// Attribute is a typed field definition within a collection's schema.
// Constraint fields are populated depending on the attribute kind.
type Attribute struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Status   string `json:"status"`
	Required bool   `json:"required"`
	Array    bool   `json:"array"`
	Default  any    `json:"default,omitempty"`

	Size     int      `json:"size,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Elements []string `json:"elements,omitempty"`

	// relationship descriptor (parent side carries the full two-way link)
	RelatedCollection string `json:"relatedCollection,omitempty"`
	RelationType      string `json:"relationType,omitempty"`
	TwoWay            bool   `json:"twoWay,omitempty"`
	TwoWayKey         string `json:"twoWayKey,omitempty"`
	OnDelete          string `json:"onDelete,omitempty"`
	Side              string `json:"side,omitempty"`
}

// Kind returns the concrete attribute kind used for creation calls.
func (a *Attribute) Kind() string {
	if a.Format != "" {
		return a.Format
	}

	return a.Type
}

// IsChildRelationship reports whether the attribute is the auto-created child
// side of a two-way relationship. It must never be explicitly replayed.
func (a *Attribute) IsChildRelationship() bool {
	return a.Type == KindRelationship && a.Side == SideChild
}

// Index is a query-acceleration definition over one or more attributes.
type Index struct {
	Key        string   `json:"key"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Attributes []string `json:"attributes"`
	Orders     []string `json:"orders,omitempty"`
}

// Document is a remote document: service metadata fields ($-prefixed) plus
// the open map of user-defined fields. Values are the JSON value set: nil,
// bool, float64, string, []any, and map[string]any, nested arbitrarily.
type Document map[string]any

// ID returns the document identifier.
func (d Document) ID() string {
	id, _ := d["$id"].(string)

	return id
}

// Permissions returns the document permission list.
func (d Document) Permissions() []string {
	raw, _ := d["$permissions"].([]any)

	perms := make([]string, 0, len(raw))
	for _, p := range raw {
		if s, ok := p.(string); ok {
			perms = append(perms, s)
		}
	}

	return perms
}

// List envelopes returned by the listing endpoints.
type (
	CollectionList struct {
		Total       int64        `json:"total"`
		Collections []Collection `json:"collections"`
	}

	AttributeList struct {
		Total      int64       `json:"total"`
		Attributes []Attribute `json:"attributes"`
	}

	IndexList struct {
		Total   int64   `json:"total"`
		Indexes []Index `json:"indexes"`
	}

	DocumentList struct {
		Total     int64      `json:"total"`
		Documents []Document `json:"documents"`
	}
)
