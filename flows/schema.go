package flows

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Schema é o contrato de um lado (entrada ou saída) de um flow: campos, tipos,
// obrigatoriedade e descrições. É derivado por reflexão do tipo Go e das tags
// `json` / `jsonschema_description`; campos sem omitempty são obrigatórios.
type Schema struct {
	name     string
	root     *jsonschema.Schema
	document []byte
	compiled *gojsonschema.Schema
}

// ValidationError lista os problemas encontrados ao validar um payload.
type ValidationError struct {
	Schema   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload não satisfaz o schema %s: %s", e.Schema, strings.Join(e.Problems, "; "))
}

// SchemaFor reflete o tipo T em um Schema.
func SchemaFor[T any](name string) (*Schema, error) {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	root := r.Reflect(new(T))
	root.Version = ""
	root.ID = ""
	root.Definitions = nil

	document, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar schema %s: %w", name, err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("erro ao compilar schema %s: %w", name, err)
	}
	return &Schema{name: name, root: root, document: document, compiled: compiled}, nil
}

// MustSchemaFor é SchemaFor para inicialização de pacote; entra em pânico se o tipo não puder ser refletido.
func MustSchemaFor[T any](name string) *Schema {
	s, err := SchemaFor[T](name)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Root devolve a árvore do schema. Não deve ser modificada.
func (s *Schema) Root() *jsonschema.Schema { return s.root }

// JSON devolve o documento JSON Schema, usado como dica no prompt.
func (s *Schema) JSON() string { return string(s.document) }

// Required lista os campos obrigatórios do nível raiz.
func (s *Schema) Required() []string {
	return append([]string(nil), s.root.Required...)
}

// Check valida um payload JSON contra o schema. Antes da validação aplica as
// coerções conhecidas: strings numéricas viram números, enums são comparados sem
// diferenciar maiúsculas, e campos opcionais nulos ou vazios são tratados como
// ausentes. Campos obrigatórios do tipo string não podem ser vazios.
// Devolve o payload normalizado.
func (s *Schema) Check(payload []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &ValidationError{Schema: s.name, Problems: []string{"JSON inválido: " + err.Error()}}
	}

	doc, problems := normalize(doc, s.root, "")

	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("erro ao validar payload contra o schema %s: %w", s.name, err)
	}
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, &ValidationError{Schema: s.name, Problems: problems}
	}
	return json.Marshal(doc)
}

// CheckValue serializa v e o valida com Check.
func (s *Schema) CheckValue(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("erro ao serializar valor para o schema %s: %w", s.name, err)
	}
	_, err = s.Check(payload)
	return err
}

func normalize(v any, s *jsonschema.Schema, path string) (any, []string) {
	if s == nil {
		return v, nil
	}
	switch s.Type {
	case "object":
		obj, ok := v.(map[string]any)
		if !ok || s.Properties == nil {
			return v, nil
		}
		required := make(map[string]bool, len(s.Required))
		for _, name := range s.Required {
			required[name] = true
		}
		var problems []string
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			key := pair.Key
			val, present := obj[key]
			if !present {
				continue
			}
			fieldPath := joinPath(path, key)
			if required[key] {
				if str, ok := val.(string); ok && strings.TrimSpace(str) == "" {
					problems = append(problems, fieldPath+": campo obrigatório vazio")
					continue
				}
			} else if val == nil || val == "" {
				delete(obj, key)
				continue
			}
			nv, p := normalize(val, pair.Value, fieldPath)
			obj[key] = nv
			problems = append(problems, p...)
		}
		return obj, problems

	case "array":
		arr, ok := v.([]any)
		if !ok {
			return v, nil
		}
		var problems []string
		for i := range arr {
			nv, p := normalize(arr[i], s.Items, fmt.Sprintf("%s[%d]", path, i))
			arr[i] = nv
			problems = append(problems, p...)
		}
		return arr, problems

	case "number", "integer":
		if str, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
				return f, nil
			}
		}

	case "string":
		str, ok := v.(string)
		if !ok || len(s.Enum) == 0 {
			return v, nil
		}
		for _, e := range s.Enum {
			if known, ok := e.(string); ok && strings.EqualFold(strings.TrimSpace(str), known) {
				return known, nil
			}
		}
	}
	return v, nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
