package services

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

const referenceYAMLEnv = "REFERENCE_YAML"

//go:embed reference.yaml
var referenceFS embed.FS

// OfficeConfig locates the office and its attendance geofence.
type OfficeConfig struct {
	Name                string  `yaml:"name" json:"name"`
	Address             string  `yaml:"address" json:"address,omitempty"`
	Latitude            float64 `yaml:"latitude" json:"latitude"`
	Longitude           float64 `yaml:"longitude" json:"longitude"`
	AllowedRadiusMeters float64 `yaml:"allowed_radius_meters" json:"allowed_radius_meters"`
}

// BandRow maps a minimum raw score to its band.
type BandRow struct {
	MinRaw int     `yaml:"min_raw" json:"min_raw"`
	Band   float64 `yaml:"band" json:"band"`
}

type referenceSpec struct {
	Office OfficeConfig         `yaml:"office"`
	Bands  map[string][]BandRow `yaml:"bands"`
}

// fallback values used when the YAML is missing or invalid
var fallbackOffice = OfficeConfig{
	Name:                "Lever Education HQ",
	Address:             "Peace Tower, ЧД - 3 хороо, Улаанбаатар 15172",
	Latitude:            47.9162536,
	Longitude:           106.902233,
	AllowedRadiusMeters: 20,
}

var fallbackBands = map[types.IeltsModule][]BandRow{
	types.IeltsModuleListening: {
		{39, 9.0}, {37, 8.5}, {35, 8.0}, {32, 7.5}, {30, 7.0},
		{26, 6.5}, {23, 6.0}, {18, 5.5}, {16, 5.0}, {13, 4.5},
		{10, 4.0}, {8, 3.5}, {6, 3.0}, {4, 2.5}, {3, 2.0},
	},
	types.IeltsModuleReading: {
		{39, 9.0}, {37, 8.5}, {35, 8.0}, {33, 7.5}, {30, 7.0},
		{27, 6.5}, {23, 6.0}, {19, 5.5}, {15, 5.0}, {13, 4.5},
		{10, 4.0}, {8, 3.5}, {6, 3.0}, {4, 2.5}, {3, 2.0},
	},
}

var referenceOnce sync.Once
var referenceCache *referenceSpec
var referenceErr error

func loadReferenceSpec() (*referenceSpec, error) {
	var raw []byte
	var err error
	if path := strings.TrimSpace(os.Getenv(referenceYAMLEnv)); path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = referenceFS.ReadFile("reference.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read reference yaml: %w", err)
	}

	var spec referenceSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse reference yaml: %w", err)
	}
	for module, rows := range spec.Bands {
		sort.Slice(rows, func(i, j int) bool { return rows[i].MinRaw > rows[j].MinRaw })
		spec.Bands[module] = rows
	}
	return &spec, nil
}

func currentReference(log *logger.Logger) *referenceSpec {
	referenceOnce.Do(func() {
		referenceCache, referenceErr = loadReferenceSpec()
	})
	if referenceErr != nil {
		if log != nil {
			log.Warn("reference spec load failed; using fallback", "error", referenceErr)
		}
		return nil
	}
	return referenceCache
}

// ReferenceOffice returns the configured office, falling back to the
// built-in values.
func ReferenceOffice(log *logger.Logger) OfficeConfig {
	if spec := currentReference(log); spec != nil && spec.Office.Latitude != 0 {
		return spec.Office
	}
	return fallbackOffice
}

// ReferenceBandRows returns the conversion rows for a module sorted by
// MinRaw descending, or nil for modules without a raw-score table.
func ReferenceBandRows(log *logger.Logger, module types.IeltsModule) []BandRow {
	key := strings.ToLower(string(module))
	if spec := currentReference(log); spec != nil {
		if rows, ok := spec.Bands[key]; ok && len(rows) > 0 {
			return rows
		}
	}
	return fallbackBands[module]
}

// ConvertRawToBand walks the module's table and returns the band of the
// first row whose threshold the raw score meets. Scores below every
// threshold floor at band 1.0.
func ConvertRawToBand(log *logger.Logger, module types.IeltsModule, raw int) float64 {
	rows := ReferenceBandRows(log, module)
	for _, row := range rows {
		if raw >= row.MinRaw {
			return row.Band
		}
	}
	return 1.0
}
