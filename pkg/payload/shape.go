package payload

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed advert.openapi.yaml
var advertSpec []byte

const advertSchemaName = "AdvertRequest"

var (
	shapeOnce   sync.Once
	shapeSchema *openapi3.Schema
	shapeErr    error
)

func advertSchema() (*openapi3.Schema, error) {
	shapeOnce.Do(func() {
		loader := &openapi3.Loader{Context: context.Background()}
		doc, err := loader.LoadFromData(advertSpec)
		if err != nil {
			shapeErr = fmt.Errorf("payload: load advert schema: %w", err)
			return
		}
		if err := doc.Validate(loader.Context, openapi3.DisableExamplesValidation()); err != nil {
			shapeErr = fmt.Errorf("payload: validate advert schema: %w", err)
			return
		}
		ref, ok := doc.Components.Schemas[advertSchemaName]
		if !ok || ref == nil || ref.Value == nil {
			shapeErr = fmt.Errorf("payload: advert schema %q missing", advertSchemaName)
			return
		}
		shapeSchema = ref.Value
	})
	return shapeSchema, shapeErr
}

// CheckShape validates the JSON form of p against the marketplace request
// schema.
func CheckShape(p *Payload) error {
	schema, err := advertSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("payload: marshal: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("payload: unmarshal: %w", err)
	}
	if err := schema.VisitJSON(decoded); err != nil {
		return fmt.Errorf("payload: shape: %w", err)
	}
	return nil
}
