package ai_services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

const historyCollectionName = "ai_request_history"

// NewHistoryEntry monta o registro de uma chamada de flow bem-sucedida.
// Os payloads passam por JSON para que o Firestore guarde os mesmos nomes de
// campo que a API expõe.
func NewHistoryEntry(userID, teamID, flow string, startedAt time.Time, request, response any) (models.AIRequestHistoryEntry, error) {
	req, err := plainJSON(request)
	if err != nil {
		return models.AIRequestHistoryEntry{}, fmt.Errorf("erro ao serializar requisição do flow %s: %w", flow, err)
	}
	resp, err := plainJSON(response)
	if err != nil {
		return models.AIRequestHistoryEntry{}, fmt.Errorf("erro ao serializar resposta do flow %s: %w", flow, err)
	}
	return models.AIRequestHistoryEntry{
		RequestID:       uuid.NewString(),
		UserID:          userID,
		TeamID:          teamID,
		Flow:            flow,
		Timestamp:       startedAt,
		DurationMs:      time.Since(startedAt).Milliseconds(),
		RequestPayload:  req,
		ResponsePayload: resp,
	}, nil
}

func plainJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HistoryRecorder grava o histórico de IA em users/{uid}/ai_request_history.
type HistoryRecorder struct {
	client *firestore.Client
}

func NewHistoryRecorder(client *firestore.Client) *HistoryRecorder {
	return &HistoryRecorder{client: client}
}

// LogAIInteraction registra uma interação com a IA no Firestore. Falhas são
// apenas logadas; não interrompem a requisição principal.
func (r *HistoryRecorder) LogAIInteraction(ctx context.Context, entry models.AIRequestHistoryEntry) {
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	doc := r.client.Collection("users").Doc(entry.UserID).Collection(historyCollectionName).Doc(entry.RequestID)
	if _, err := doc.Set(ctx, entry); err != nil {
		utilities.LogError(err, fmt.Sprintf("LogAIInteraction: Falha ao salvar histórico de IA (flow %s, usuário %s)", entry.Flow, entry.UserID))
		return
	}
	utilities.LogDebug("LogAIInteraction: Histórico de IA salvo com ID %s para o usuário %s", entry.RequestID, entry.UserID)
}
