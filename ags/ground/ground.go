// Package ground holds the ground-investigation domain model built from AGS groups:
// boreholes (LOCA), strata (GEOL) and contaminant samples (ERES).
//
// Entities are values produced once per mapping pass and never mutated afterwards. Lengths
// are in metres; concentrations are in the canonical units of package units.
package ground

import (
	"math"
	"time"
)

// Point is a 3-D coordinate. Unknown ordinates are NaN.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// NaNPoint returns a point with every ordinate unknown.
func NaNPoint() Point {
	return Point{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
}

// HasXY reports whether both plan ordinates are known.
func (p Point) HasXY() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

// Borehole is one investigation location (LOCA row).
type Borehole struct {
	ID                 string              `json:"id" yaml:"id"`
	Top                Point               `json:"top" yaml:"top"`
	Bottom             Point               `json:"bottom" yaml:"bottom"`
	Properties         []BoreholeProperty  `json:"properties,omitempty" yaml:"properties,omitempty"`
	Strata             []Stratum           `json:"strata,omitempty" yaml:"strata,omitempty"`
	ContaminantSamples []ContaminantSample `json:"contaminant_samples,omitempty" yaml:"contaminant_samples,omitempty"`
}

// Depth is the vertical distance between top and bottom.
func (b *Borehole) Depth() float64 {
	return b.Top.Z - b.Bottom.Z
}

// Methodology returns the methodology bundle, if attached.
func (b *Borehole) Methodology() (*Methodology, bool) {
	for _, p := range b.Properties {
		if p.Methodology != nil {
			return p.Methodology, true
		}
	}
	return nil, false
}

// Location returns the location bundle, if attached.
func (b *Borehole) Location() (*Location, bool) {
	for _, p := range b.Properties {
		if p.Location != nil {
			return p.Location, true
		}
	}
	return nil, false
}

// Reference returns the reference bundle, if attached.
func (b *Borehole) Reference() (*BoreholeReference, bool) {
	for _, p := range b.Properties {
		if p.Reference != nil {
			return p.Reference, true
		}
	}
	return nil, false
}

// PropertyKind discriminates BoreholeProperty.
type PropertyKind string

const (
	PropertyMethodology PropertyKind = "methodology"
	PropertyLocation    PropertyKind = "location"
	PropertyReference   PropertyKind = "reference"
)

// BoreholeProperty is a tagged variant: exactly one of the pointers matching Kind is set.
type BoreholeProperty struct {
	Kind        PropertyKind       `json:"kind" yaml:"kind"`
	Methodology *Methodology       `json:"methodology,omitempty" yaml:"methodology,omitempty"`
	Location    *Location          `json:"location,omitempty" yaml:"location,omitempty"`
	Reference   *BoreholeReference `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// MethodologyProperty wraps m as a BoreholeProperty.
func MethodologyProperty(m Methodology) BoreholeProperty {
	return BoreholeProperty{Kind: PropertyMethodology, Methodology: &m}
}

// LocationProperty wraps l as a BoreholeProperty.
func LocationProperty(l Location) BoreholeProperty {
	return BoreholeProperty{Kind: PropertyLocation, Location: &l}
}

// ReferenceProperty wraps r as a BoreholeProperty.
func ReferenceProperty(r BoreholeReference) BoreholeProperty {
	return BoreholeProperty{Kind: PropertyReference, Reference: &r}
}

type Methodology struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Remarks     string `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Purpose     string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Termination string `json:"termination,omitempty" yaml:"termination,omitempty"`
}

// IsZero reports whether no methodology column carried a value.
func (m Methodology) IsZero() bool {
	return m == Methodology{}
}

type Location struct {
	Method      string  `json:"method,omitempty" yaml:"method,omitempty"`
	SubDivision string  `json:"sub_division,omitempty" yaml:"sub_division,omitempty"`
	Phase       string  `json:"phase,omitempty" yaml:"phase,omitempty"`
	Alignment   string  `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Offset      float64 `json:"offset" yaml:"offset"` // metres, NaN when unknown
	Chainage    string  `json:"chainage,omitempty" yaml:"chainage,omitempty"`
	Algorithm   string  `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

func (l Location) IsZero() bool {
	return l.Method == "" && l.SubDivision == "" && l.Phase == "" && l.Alignment == "" &&
		math.IsNaN(l.Offset) && l.Chainage == "" && l.Algorithm == ""
}

type BoreholeReference struct {
	StartDate         time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate           time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Files             string    `json:"files,omitempty" yaml:"files,omitempty"`
	OriginalID        string    `json:"original_id,omitempty" yaml:"original_id,omitempty"`
	OriginalReference string    `json:"original_reference,omitempty" yaml:"original_reference,omitempty"`
	OriginalCompany   string    `json:"original_company,omitempty" yaml:"original_company,omitempty"`
}

func (r BoreholeReference) IsZero() bool {
	return r.StartDate.IsZero() && r.EndDate.IsZero() && r.Files == "" &&
		r.OriginalID == "" && r.OriginalReference == "" && r.OriginalCompany == ""
}

// Stratum is one logged geological layer (GEOL row). Depths are metres below the borehole top.
type Stratum struct {
	ID                         string            `json:"id" yaml:"id"`
	Top                        float64           `json:"top" yaml:"top"`
	Bottom                     float64           `json:"bottom" yaml:"bottom"`
	LogDescription             string            `json:"log_description,omitempty" yaml:"log_description,omitempty"`
	Legend                     string            `json:"legend,omitempty" yaml:"legend,omitempty"`
	ObservedGeology            string            `json:"observed_geology" yaml:"observed_geology"`
	InterpretedGeology         string            `json:"interpreted_geology,omitempty" yaml:"interpreted_geology,omitempty"`
	OptionalInterpretedGeology string            `json:"optional_interpreted_geology,omitempty" yaml:"optional_interpreted_geology,omitempty"`
	Reference                  *StratumReference `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// Thickness of the layer in metres.
func (s *Stratum) Thickness() float64 {
	return s.Bottom - s.Top
}

type StratumReference struct {
	Remarks     string `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	LexiconCode string `json:"lexicon_code,omitempty" yaml:"lexicon_code,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Files       string `json:"files,omitempty" yaml:"files,omitempty"`
}

// ContaminantSample is one environmental laboratory result (ERES row).
type ContaminantSample struct {
	ID          string  `json:"id" yaml:"id"`
	Top         float64 `json:"top" yaml:"top"`
	Chemical    string  `json:"chemical,omitempty" yaml:"chemical,omitempty"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	ResultValue float64 `json:"result_value" yaml:"result_value"`
	// ResultUnit is the ERES_RUNI unit the value was reported in; ResultValue is normalised
	// unless the unit was unrecognised.
	ResultUnit string `json:"result_unit,omitempty" yaml:"result_unit,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`

	Reference SampleReference     `json:"reference" yaml:"reference"`
	Test      TestProperties      `json:"test" yaml:"test"`
	Analysis  AnalysisProperties  `json:"analysis" yaml:"analysis"`
	Result    ResultProperties    `json:"result" yaml:"result"`
	Detection DetectionProperties `json:"detection" yaml:"detection"`
}

type SampleReference struct {
	Reference   string    `json:"reference,omitempty" yaml:"reference,omitempty"`
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	ReceiptDate time.Time `json:"receipt_date,omitempty" yaml:"receipt_date,omitempty"`
	BatchCode   string    `json:"batch_code,omitempty" yaml:"batch_code,omitempty"`
	Files       string    `json:"files,omitempty" yaml:"files,omitempty"`
}

type TestProperties struct {
	Name         string    `json:"name,omitempty" yaml:"name,omitempty"`
	LabTestName  string    `json:"lab_test_name,omitempty" yaml:"lab_test_name,omitempty"`
	Reference    string    `json:"reference,omitempty" yaml:"reference,omitempty"`
	RunType      string    `json:"run_type,omitempty" yaml:"run_type,omitempty"`
	Matrix       string    `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Method       string    `json:"method,omitempty" yaml:"method,omitempty"`
	AnalysisDate time.Time `json:"analysis_date,omitempty" yaml:"analysis_date,omitempty"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Remarks      string    `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Status       string    `json:"status,omitempty" yaml:"status,omitempty"`
}

type AnalysisProperties struct {
	TotalOrDissolved  string    `json:"total_or_dissolved,omitempty" yaml:"total_or_dissolved,omitempty"`
	AccreditingBody   string    `json:"accrediting_body,omitempty" yaml:"accrediting_body,omitempty"`
	LabName           string    `json:"lab_name,omitempty" yaml:"lab_name,omitempty"`
	PercentageRemoved float64   `json:"percentage_removed" yaml:"percentage_removed"`
	SizeRemoved       float64   `json:"size_removed" yaml:"size_removed"` // metres
	InstrumentRef     string    `json:"instrument_ref,omitempty" yaml:"instrument_ref,omitempty"`
	LeachateDate      time.Time `json:"leachate_date,omitempty" yaml:"leachate_date,omitempty"`
	LeachateMethod    string    `json:"leachate_method,omitempty" yaml:"leachate_method,omitempty"`
	DilutionFactor    int       `json:"dilution_factor" yaml:"dilution_factor"`
	Basis             string    `json:"basis,omitempty" yaml:"basis,omitempty"`
	Location          string    `json:"location,omitempty" yaml:"location,omitempty"`
}

type ResultProperties struct {
	Organic    bool   `json:"organic" yaml:"organic"`
	Reportable bool   `json:"reportable" yaml:"reportable"`
	Detected   bool   `json:"detected" yaml:"detected"`
	SampleType string `json:"sample_type,omitempty" yaml:"sample_type,omitempty"`
	ResultType string `json:"result_type,omitempty" yaml:"result_type,omitempty"`
}

// DetectionProperties are normalised from ERES_DUNI, or from the declared column unit when a
// row gives none.
type DetectionProperties struct {
	DetectionLimit       float64 `json:"detection_limit" yaml:"detection_limit"`
	MethodDetectionLimit float64 `json:"method_detection_limit" yaml:"method_detection_limit"`
	QuantificationLimit  float64 `json:"quantification_limit" yaml:"quantification_limit"`
	TICProbability       float64 `json:"tic_probability" yaml:"tic_probability"`
	TICRetention         float64 `json:"tic_retention" yaml:"tic_retention"`
}
