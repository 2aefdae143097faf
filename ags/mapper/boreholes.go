package mapper

import (
	"fmt"
	"math"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
	"github.com/teranos/qntx-ags/errors"
)

// MapBoreholes maps every LOCA row and links each borehole to the strata and samples with the
// same LOCA_ID. strata and samples must be non-nil (empty is fine); they are usually the output
// of MapStrata and MapContaminantSamples on the same table.
//
// A borehole is always built, even without usable coordinates: missing ordinates are NaN and
// a warning is reported.
func (m *Mapper) MapBoreholes(table *parser.RawTable, strata []ground.Stratum, samples []ground.ContaminantSample) ([]ground.Borehole, error) {
	if err := m.check(table); err != nil {
		return nil, err
	}
	if strata == nil || samples == nil {
		return nil, errors.NewContractViolation("boreholes need the mapped strata and samples (got strata=%t samples=%t)",
			strata != nil, samples != nil)
	}

	boreholes := []ground.Borehole{}
	g, ok := m.group(table, GroupLocation, "boreholes")
	if !ok {
		return boreholes, nil
	}

	strataByID := make(map[string][]ground.Stratum)
	for _, s := range strata {
		strataByID[s.ID] = append(strataByID[s.ID], s)
	}
	samplesByID := make(map[string][]ground.ContaminantSample)
	for _, s := range samples {
		samplesByID[s.ID] = append(samplesByID[s.ID], s)
	}

	p := m.newPass(g)
	for i := range g.Rows {
		b := m.borehole(p.row(i))
		b.Strata = strataByID[b.ID]
		b.ContaminantSamples = samplesByID[b.ID]
		boreholes = append(boreholes, b)
	}
	return boreholes, nil
}

func (m *Mapper) borehole(f *fields) ground.Borehole {
	id := f.String("LOCA_ID")
	if id == "" {
		f.issue(ingestion.CodeFieldMissing, ingestion.SeverityWarning, "LOCA_ID", "borehole has an empty LOCA_ID")
	}
	a := f.aux()

	top := ground.NaNPoint()
	top.X, top.Y = f.Measure("LOCA_NATE"), f.Measure("LOCA_NATN")
	if !top.HasXY() {
		top.X, top.Y = a.Measure("LOCA_LOCX"), a.Measure("LOCA_LOCY")
		if top.HasXY() {
			f.issue(ingestion.CodeGeometryFallback, ingestion.SeverityInfo, "LOCA_LOCX",
				fmt.Sprintf("%s has no national grid coordinates; local LOCA_LOCX/LOCA_LOCY used", describe(id)))
		} else {
			// A lone local ordinate is no position.
			top.X, top.Y = math.NaN(), math.NaN()
			f.issue(ingestion.CodeGeometryFallback, ingestion.SeverityWarning, "LOCA_NATE",
				fmt.Sprintf("no valid coordinates for the top of %s; easting and northing left unknown", describe(id)))
		}
	}

	top.Z = f.Measure("LOCA_GL")
	if math.IsNaN(top.Z) && a.Has("LOCA_LOCZ") {
		top.Z = a.Measure("LOCA_LOCZ")
		f.issue(ingestion.CodeGeometryFallback, ingestion.SeverityInfo, "LOCA_LOCZ",
			fmt.Sprintf("%s has no ground level; local LOCA_LOCZ used", describe(id)))
	}

	// Depth is measured down from the top, so the bottom level is relative to it.
	bottom := ground.Point{X: a.Measure("LOCA_ETRV"), Y: a.Measure("LOCA_NTRV"), Z: top.Z - f.Measure("LOCA_FDEP")}
	if !bottom.HasXY() {
		bottom.X, bottom.Y = a.Measure("LOCA_XTRL"), a.Measure("LOCA_YTRL")
		if !bottom.HasXY() {
			f.issue(ingestion.CodeGeometryFallback, ingestion.SeverityWarning, "LOCA_ETRV",
				fmt.Sprintf("no valid coordinates for the bottom of %s; borehole assumed vertical", describe(id)))
			bottom.X, bottom.Y = top.X, top.Y
		}
	}

	return ground.Borehole{
		ID:         id,
		Top:        top,
		Bottom:     bottom,
		Properties: properties(a),
	}
}

// properties builds the auxiliary bundles, attaching only those with at least one value.
func properties(a *fields) []ground.BoreholeProperty {
	var props []ground.BoreholeProperty

	methodology := ground.Methodology{
		Type:        a.String("LOCA_TYPE"),
		Status:      a.String("LOCA_STAT"),
		Remarks:     a.String("LOCA_REM"),
		Purpose:     a.String("LOCA_PURP"),
		Termination: a.String("LOCA_TERM"),
	}
	if !methodology.IsZero() {
		props = append(props, ground.MethodologyProperty(methodology))
	}

	location := ground.Location{
		Method:      a.String("LOCA_LOCM"),
		SubDivision: a.String("LOCA_LOCA"),
		Phase:       a.String("LOCA_CLST"),
		Alignment:   a.String("LOCA_ALID"),
		Offset:      a.Measure("LOCA_OFFS"),
		Chainage:    a.String("LOCA_CNGE"),
		Algorithm:   a.String("LOCA_TRAN"),
	}
	if !location.IsZero() {
		props = append(props, ground.LocationProperty(location))
	}

	reference := ground.BoreholeReference{
		StartDate:         a.Date("LOCA_STAR"),
		EndDate:           a.Date("LOCA_ENDD"),
		Files:             a.String("FILE_FSET"),
		OriginalID:        a.String("LOCA_ORID"),
		OriginalReference: a.String("LOCA_ORJO"),
		OriginalCompany:   a.String("LOCA_ORCO"),
	}
	if !reference.IsZero() {
		props = append(props, ground.ReferenceProperty(reference))
	}
	return props
}
