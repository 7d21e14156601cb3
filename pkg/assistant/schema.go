package assistant

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

func generateJSONSchema[T any]() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var value T
	schema := reflector.Reflect(value)

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return schemaJSON, nil
}

// schemaInstruction tells the model to answer with JSON shaped like T.
func schemaInstruction[T any]() (string, error) {
	schema, err := generateJSONSchema[T]()
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	return "Return ONLY valid JSON matching this schema. Do not include markdown fences.\n" + string(schema), nil
}
