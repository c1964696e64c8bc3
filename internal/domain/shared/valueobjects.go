package shared

import (
	"strings"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// EntityID identifies an actor, video, comment or channel (UUID format).
type EntityID string

// IsValid reports whether id is a UUID in canonical form.
func (id EntityID) IsValid() bool {
	u, err := uuid.Parse(string(id))
	return err == nil && u.String() == string(id)
}

// String returns the string representation.
func (id EntityID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id EntityID) IsEmpty() bool {
	return id == ""
}

// NewEntityID parses id in any form uuid.Parse accepts (hyphenated, 32-hex,
// braced, urn:uuid:) and returns the canonical lowercase hyphenated form.
// Two ids name the same entity exactly when their EntityIDs are equal.
func NewEntityID(id string) (EntityID, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", WrapError("shared", "NewEntityID", ErrInvalidID, "invalid id format", err)
	}
	return EntityID(u.String()), nil
}

// CanonicalOptionalID is NewEntityID for ids that may be absent: blank input
// returns "" without error.
func CanonicalOptionalID(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", nil
	}
	eid, err := NewEntityID(id)
	if err != nil {
		return "", err
	}
	return eid.String(), nil
}

// GenerateID returns a new random EntityID.
func GenerateID() EntityID {
	return EntityID(uuid.NewString())
}

// ═══════════════════════════════════════════════════════════════════════════
// Sort Direction Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection accepts asc, desc and the legacy alias dsc in any case.
// An empty value means DESC.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "dsc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	default:
		return "", ErrInvalidDirection
	}
}

// SQL returns the SQL keyword.
func (d SortDirection) SQL() string {
	if d == SortAsc {
		return "ASC"
	}
	return "DESC"
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents validated page/limit parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	return p.PageSize
}

// NewPagination validates page and pageSize. Both must be at least 1;
// pageSize is capped at MaxPageSize.
func NewPagination(page, pageSize int) (Pagination, error) {
	if page < 1 || pageSize < 1 {
		return Pagination{}, ErrInvalidPagination
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}, nil
}

// DefaultPagination returns the first page with the default size.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: DefaultPageSize}
}
