package ai_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"taskflow-backend/config"
	"taskflow-backend/flows"
	"taskflow-backend/utilities"
)

// ErrPromptBlocked indica que o provedor recusou a instrução (filtro de segurança).
var ErrPromptBlocked = errors.New("instrução bloqueada pelo provedor de IA")

// contentGenerator é a parte do cliente genai que usamos.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiModel implementa flows.Model sobre a API do Gemini. Cada Generate é
// uma única chamada GenerateContent com resposta em JSON restrita ao schema do flow.
type GeminiModel struct {
	models      contentGenerator
	model       string
	temperature *float32
}

// NewGeminiModel cria o cliente genai com a chave de API da configuração.
func NewGeminiModel(ctx context.Context, cfg config.AIConfig) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar cliente do Gemini: %w", err)
	}
	utilities.LogInfo("Cliente do Gemini inicializado com o modelo %s", cfg.Model)

	temperature := cfg.Temperature
	return &GeminiModel{models: client.Models, model: cfg.Model, temperature: &temperature}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, req flows.ModelRequest) ([]byte, error) {
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      m.temperature,
	}
	if req.OutputSchema != nil {
		genConfig.ResponseSchema = toGenaiSchema(req.OutputSchema.Root())
	}

	resp, err := m.models.GenerateContent(ctx, m.model, genai.Text(req.Instruction), genConfig)
	if err != nil {
		return nil, fmt.Errorf("falha ao chamar o modelo %s: %w", m.model, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reason := resp.PromptFeedback.BlockReasonMessage
		if reason == "" {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: %s", ErrPromptBlocked, reason)
	}

	return []byte(stripCodeFence(resp.Text())), nil
}

// stripCodeFence remove a cerca ```json que alguns modelos colocam em volta do JSON.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

// toGenaiSchema converte o schema refletido do flow para o subconjunto OpenAPI
// aceito em ResponseSchema.
func toGenaiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	}

	for _, e := range s.Enum {
		if str, ok := e.(string); ok {
			out.Enum = append(out.Enum, str)
		}
	}
	if len(out.Enum) > 0 {
		out.Format = "enum"
	}

	out.Items = toGenaiSchema(s.Items)
	if s.Properties != nil && s.Properties.Len() > 0 {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = toGenaiSchema(pair.Value)
		}
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}
