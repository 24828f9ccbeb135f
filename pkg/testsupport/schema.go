package testsupport

import (
	_ "embed"
	"testing"

	"github.com/goliatone/go-adfeatures/internal/schema/loader"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

//go:embed testdata/cars.json
var carsDocument []byte

// Field ids of the car fixture.
const (
	FieldTitle        = "12"
	FieldDescription  = "13"
	FieldPrice        = "2"
	FieldImages       = "14"
	FieldRegion       = "5"
	FieldMake         = "20"
	FieldModel        = "21"
	FieldGeneration   = "2095"
	FieldYear         = "19"
	FieldMileage      = "104"
	FieldVIN          = "2512"
	FieldTransmission = "101"
	FieldCondition    = "775"
	FieldSteering     = "593"
	FieldCleared      = "908"
)

// CarsDocument returns a copy of the car schema fixture.
func CarsDocument() []byte {
	return append([]byte(nil), carsDocument...)
}

// CarProfile mirrors the marketplace profile used for the car category.
func CarProfile() schema.Profile {
	return schema.Profile{
		Extract: []string{
			FieldTitle, FieldPrice, FieldMake, FieldYear, FieldMileage,
			FieldVIN, FieldTransmission, FieldCleared,
		},
		StaticDefaults: map[string]string{
			FieldCondition: "18592",
			FieldSteering:  "18668",
		},
		Dependencies: map[string]string{
			FieldModel:      FieldMake,
			FieldGeneration: FieldModel,
		},
		MultiSignal: map[string]map[string]string{
			FieldGeneration: {
				"vin":   FieldVIN,
				"year":  FieldYear,
				"make":  FieldMake,
				"model": FieldModel,
			},
		},
		Composite: []string{FieldDescription},
		Types: map[string]schema.FieldType{
			FieldTitle:       schema.FieldTypeBilingualText,
			FieldDescription: schema.FieldTypeBilingualText,
		},
		Formats: map[string]schema.Format{
			FieldVIN: schema.FormatVIN,
		},
	}
}

// CarSchema parses the car fixture with CarProfile.
func CarSchema(t testing.TB) *schema.Schema {
	t.Helper()

	sch, err := ParseSchema(CarsDocument(), CarProfile())
	if err != nil {
		t.Fatalf("load car schema: %v", err)
	}
	return sch
}

// ParseSchema decodes an in-memory document.
func ParseSchema(raw []byte, profile schema.Profile) (*schema.Schema, error) {
	doc, err := schema.NewDocument(schema.SourceFromFS("inline.json"), raw)
	if err != nil {
		return nil, err
	}
	return loader.Parse(doc, profile)
}
