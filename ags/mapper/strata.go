package mapper

import (
	"fmt"
	"math"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
)

// MapStrata maps every GEOL row. Rows without a numeric top and base depth are dropped.
// The returned slice is never nil on success.
func (m *Mapper) MapStrata(table *parser.RawTable) ([]ground.Stratum, error) {
	if err := m.check(table); err != nil {
		return nil, err
	}
	strata := []ground.Stratum{}
	g, ok := m.group(table, GroupGeology, "strata")
	if !ok {
		return strata, nil
	}

	p := m.newPass(g)
	for i := range g.Rows {
		if s, ok := m.stratum(p.row(i)); ok {
			strata = append(strata, s)
		}
	}
	return strata, nil
}

func (m *Mapper) stratum(f *fields) (ground.Stratum, bool) {
	id := f.String("LOCA_ID")
	top := f.Measure("GEOL_TOP")
	base := f.Measure("GEOL_BASE")
	if math.IsNaN(top) || math.IsNaN(base) {
		f.issue(ingestion.CodeRowSkipped, ingestion.SeverityWarning, "",
			fmt.Sprintf("stratum of %s skipped: top and base depth must both be numeric", describe(id)))
		return ground.Stratum{}, false
	}

	legend := f.String("GEOL_LEG")
	if legend == "" && f.pass.group.HasHeading("GEOL_LEG") {
		f.issue(ingestion.CodeFieldMissing, ingestion.SeverityWarning, "GEOL_LEG",
			fmt.Sprintf("stratum of %s has no legend code", describe(id)))
	}

	observed := f.String("GEOL_GEOL")
	if observed == "" {
		observed = m.cfg.BlankGeology
	}

	s := ground.Stratum{
		ID:                         id,
		Top:                        top,
		Bottom:                     base,
		LogDescription:             f.String("GEOL_DESC"),
		Legend:                     legend,
		ObservedGeology:            observed,
		InterpretedGeology:         f.String("GEOL_GEO2"),
		OptionalInterpretedGeology: f.optional("GEOL_GEO3"),
	}

	ref := ground.StratumReference{
		Remarks:     f.optional("GEOL_REM"),
		LexiconCode: f.optional("GEOL_BGS"),
		Status:      f.optional("GEOL_STAT"),
		Files:       f.optional("FILE_FSET"),
	}
	if ref != (ground.StratumReference{}) {
		s.Reference = &ref
	}
	return s, true
}

// describe names a borehole id in messages, including the empty one.
func describe(id string) string {
	if id == "" {
		return "borehole with empty LOCA_ID"
	}
	return id
}
