package mapper

import (
	"fmt"
	"math"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
)

// MapContaminantSamples maps every ERES row. A row is dropped when neither SAMP_TOP nor
// SPEC_DPTH gives a depth. The returned slice is never nil on success.
func (m *Mapper) MapContaminantSamples(table *parser.RawTable) ([]ground.ContaminantSample, error) {
	if err := m.check(table); err != nil {
		return nil, err
	}
	samples := []ground.ContaminantSample{}
	g, ok := m.group(table, GroupEnvironment, "contaminant samples")
	if !ok {
		return samples, nil
	}

	p := m.newPass(g)
	for i := range g.Rows {
		if s, ok := m.sample(p.row(i)); ok {
			samples = append(samples, s)
		}
	}
	return samples, nil
}

func (m *Mapper) sample(f *fields) (ground.ContaminantSample, bool) {
	id := f.String("LOCA_ID")

	top := f.Measure("SAMP_TOP")
	if math.IsNaN(top) {
		top = f.Measure("SPEC_DPTH")
	}
	if math.IsNaN(top) {
		f.issue(ingestion.CodeRowSkipped, ingestion.SeverityWarning, "",
			fmt.Sprintf("contaminant sample of %s skipped: no SAMP_TOP or SPEC_DPTH depth", describe(id)))
		return ground.ContaminantSample{}, false
	}

	// Lab result units vary row by row; ERES_RUNI overrides the column unit.
	resultUnit := f.String("ERES_RUNI")
	if resultUnit == "" {
		resultUnit, _ = f.pass.group.Unit("ERES_RVAL")
	}
	sampleType := f.String("SAMP_TYPE")

	a := f.aux()
	detectionUnit := a.String("ERES_DUNI")
	detection := func(heading string) float64 {
		if detectionUnit != "" {
			return a.MeasureIn(heading, detectionUnit)
		}
		return a.Measure(heading)
	}

	return ground.ContaminantSample{
		ID:          id,
		Top:         top,
		Chemical:    f.String("ERES_CODE"),
		Name:        f.String("ERES_NAME"),
		ResultValue: f.MeasureIn("ERES_RVAL", resultUnit),
		ResultUnit:  resultUnit,
		Type:        sampleType,
		Reference: ground.SampleReference{
			Reference:   a.String("SAMP_REF"),
			ID:          a.String("SAMP_ID"),
			ReceiptDate: a.Date("ERES_RDAT"),
			BatchCode:   a.String("ERES_SGRP"),
			Files:       a.String("FILE_FSET"),
		},
		Test: ground.TestProperties{
			Name:         a.String("ERES_TEST"),
			LabTestName:  a.String("ERES_TNAM"),
			Reference:    a.String("ERES_TESN"),
			RunType:      a.String("ERES_RTYP"),
			Matrix:       a.String("ERES_MATX"),
			Method:       a.String("ERES_METH"),
			AnalysisDate: a.Date("ERES_DTIM"),
			Description:  a.String("SPEC_DESC"),
			Remarks:      a.String("ERES_REM"),
			Status:       a.String("TEST_STAT"),
		},
		Analysis: ground.AnalysisProperties{
			TotalOrDissolved:  a.String("ERES_TORD"),
			AccreditingBody:   a.String("ERES_CRED"),
			LabName:           a.String("ERES_LAB"),
			PercentageRemoved: a.Measure("ERES_PERP"),
			SizeRemoved:       a.Measure("ERES_SIZE"),
			InstrumentRef:     a.String("ERES_IREF"),
			LeachateDate:      a.Date("ERES_LDTM"),
			LeachateMethod:    a.String("ERES_LMTH"),
			DilutionFactor:    a.Int("ERES_DIL"),
			Basis:             a.String("ERES_BAS"),
			Location:          a.String("ERES_LOCN"),
		},
		Result: ground.ResultProperties{
			Organic:    a.Bool("ERES_ORG"),
			Reportable: a.Bool("ERES_RRES"),
			Detected:   a.Bool("ERES_DETF"),
			SampleType: sampleType,
			ResultType: a.String("ERES_RTCD"),
		},
		Detection: ground.DetectionProperties{
			DetectionLimit:       detection("ERES_RDLM"),
			MethodDetectionLimit: detection("ERES_MDLM"),
			QuantificationLimit:  detection("ERES_QLM"),
			TICProbability:       a.Measure("ERES_TICP"),
			TICRetention:         a.Measure("ERES_TICT"),
		},
	}, true
}
