package engine

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fedecoop/padron/pkg/catalog"
)

// EntityTable describes one of the canonical parent tables that dependent
// tables reference by a matrícula-style key.
type EntityTable struct {
	// Name is the entity table's name in the catalog.
	Name string
	// KeyColumn is the matrícula column on the entity table.
	KeyColumn string
	// DisplayColumn holds the entity's display name (razón social).
	DisplayColumn string
	// LocalityColumn holds the entity's locality.
	LocalityColumn string
	// ColumnHint matches dependent-table column names that reference this
	// entity when no foreign-key constraint is declared, e.g. "matricula"
	// for cooperatives and "matricula_mutual" for mutual associations.
	ColumnHint string
}

// Projection aliases for the display columns an enriched read adds.
const (
	EntityNameField     = "EntidadNombre"
	EntityLocalityField = "EntidadLocalidad"
)

// DefaultEntityTables covers the two canonical registries. Longer hints are
// listed first so "matricula_mutual" is not swallowed by the "matricula"
// prefix.
var DefaultEntityTables = []EntityTable{
	{
		Name:           "mutuales",
		KeyColumn:      "matricula",
		DisplayColumn:  "razon_social",
		LocalityColumn: "localidad",
		ColumnHint:     "matricula_mutual",
	},
	{
		Name:           "cooperativas",
		KeyColumn:      "matricula",
		DisplayColumn:  "razon_social",
		LocalityColumn: "localidad",
		ColumnHint:     "matricula",
	},
}

// JoinPlan is the optional query extension an enriched read applies: a join
// clause and the extra display columns it projects. The join is a LEFT JOIN
// so a dangling or null matrícula never hides the dependent row.
type JoinPlan struct {
	Join          string
	SelectColumns []string
}

// Enricher plans the entity-table join for tables that reference a
// cooperative or mutual-association entity.
type Enricher struct {
	entities []EntityTable
}

// NewEnricher creates an Enricher over the given entity tables; pass
// DefaultEntityTables for the standard registries.
func NewEnricher(entities []EntityTable) *Enricher {
	return &Enricher{entities: entities}
}

// Plan returns the join plan for the table, or nil when the table has no
// matrícula-style reference. Entity tables themselves are never enriched, so
// a read of "cooperativas" cannot self-join. A nil plan is the normal case,
// not an error.
func (e *Enricher) Plan(schema *catalog.TableSchema) *JoinPlan {
	for _, entity := range e.entities {
		if strings.EqualFold(schema.Name, entity.Name) {
			return nil
		}
	}

	// Declared foreign keys take precedence over the column-name hint.
	for _, fk := range schema.ForeignKeys {
		for _, entity := range e.entities {
			if strings.EqualFold(fk.TargetTable, entity.Name) {
				return e.plan(schema, entity, fk.Column)
			}
		}
	}

	for _, entity := range e.entities {
		for _, col := range schema.Columns {
			if strings.EqualFold(col.Name, entity.ColumnHint) {
				return e.plan(schema, entity, col.Name)
			}
		}
	}

	return nil
}

func (e *Enricher) plan(schema *catalog.TableSchema, entity EntityTable, column string) *JoinPlan {
	base := pq.QuoteIdentifier(schema.Name)
	target := pq.QuoteIdentifier(entity.Name)

	return &JoinPlan{
		Join: fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s",
			target,
			base, pq.QuoteIdentifier(column),
			target, pq.QuoteIdentifier(entity.KeyColumn),
		),
		SelectColumns: []string{
			fmt.Sprintf("%s.%s AS %s", target, pq.QuoteIdentifier(entity.DisplayColumn), pq.QuoteIdentifier(EntityNameField)),
			fmt.Sprintf("%s.%s AS %s", target, pq.QuoteIdentifier(entity.LocalityColumn), pq.QuoteIdentifier(EntityLocalityField)),
		},
	}
}
