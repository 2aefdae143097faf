// Package mapper turns tokenized AGS groups into ground entities.
//
// Groups are mapped in a fixed order: GEOL into strata, ERES into contaminant samples, then
// LOCA into boreholes, each borehole taking the strata and samples that share its LOCA_ID.
// Data-quality problems are reported through an ingestion.Reporter and never stop a pass; only
// caller mistakes (nil table, reporter or linked collections) are returned as errors.
package mapper

import (
	"time"

	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/ags/ground"
	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/ags/parser"
	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
)

// Supported group keys.
const (
	GroupLocation    = "LOCA"
	GroupGeology     = "GEOL"
	GroupEnvironment = "ERES"
)

// DefaultBlankGeology is used for strata whose GEOL_GEOL is empty when no other code is configured.
const DefaultBlankGeology = "UNKNOWN"

const stage = "map"

// Config is the injected configuration of a mapping pass.
type Config struct {
	// BlankGeology replaces an empty observed-geology code.
	BlankGeology string
}

// Mapper converts RawTable groups into entities. It holds no per-pass state, so repeated
// calls on the same table give identical results.
type Mapper struct {
	cfg      Config
	reporter ingestion.Reporter
	log      *zap.SugaredLogger
}

// Result is the output of a full mapping pass.
type Result struct {
	Boreholes          []ground.Borehole
	Strata             []ground.Stratum
	ContaminantSamples []ground.ContaminantSample
}

// New creates a mapper reporting issues to reporter.
func New(cfg Config, reporter ingestion.Reporter) *Mapper {
	if cfg.BlankGeology == "" {
		cfg.BlankGeology = DefaultBlankGeology
	}
	return &Mapper{
		cfg:      cfg,
		reporter: reporter,
		log:      logger.ComponentLogger("mapper"),
	}
}

// Map maps all supported groups in GEOL, ERES, LOCA order.
func (m *Mapper) Map(table *parser.RawTable) (*Result, error) {
	start := time.Now()

	strata, err := m.MapStrata(table)
	if err != nil {
		return nil, err
	}
	samples, err := m.MapContaminantSamples(table)
	if err != nil {
		return nil, err
	}
	boreholes, err := m.MapBoreholes(table, strata, samples)
	if err != nil {
		return nil, err
	}

	m.log.Debugw("Mapped AGS table",
		"boreholes", len(boreholes),
		"strata", len(strata),
		"samples", len(samples),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return &Result{
		Boreholes:          boreholes,
		Strata:             strata,
		ContaminantSamples: samples,
	}, nil
}

func (m *Mapper) check(table *parser.RawTable) error {
	if m == nil || m.reporter == nil {
		return errors.NewContractViolation("mapper has no issue reporter")
	}
	if table == nil {
		return errors.NewContractViolation("nil RawTable")
	}
	return nil
}

// group returns the named group, reporting a structural issue when it is absent.
func (m *Mapper) group(table *parser.RawTable, key, entities string) (*parser.Group, bool) {
	g, ok := table.Group(key)
	if !ok {
		m.reporter.Report(ingestion.Issue{
			Stage:    stage,
			Code:     ingestion.CodeStructural,
			Severity: ingestion.SeverityWarning,
			Message:  "group not present or has no data; no " + entities + " mapped",
			Group:    key,
		})
	}
	return g, ok
}
