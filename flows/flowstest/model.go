// Package flowstest fornece um flows.Model roteirizado para testes.
package flowstest

import (
	"context"
	"encoding/json"
	"sync"

	"taskflow-backend/flows"
)

// Reply é a resposta roteirizada para uma chamada.
type Reply struct {
	Payload []byte
	Err     error
}

// Model devolve respostas fixas por flow e registra cada chamada recebida.
// Pode ser usado por várias goroutines.
type Model struct {
	mu       sync.Mutex
	replies  map[string]Reply
	fallback *Reply
	calls    []flows.ModelRequest
}

func NewModel() *Model {
	return &Model{replies: map[string]Reply{}}
}

// Respond faz o flow devolver o payload cru.
func (m *Model) Respond(flow string, payload string) *Model {
	return m.set(flow, Reply{Payload: []byte(payload)})
}

// RespondJSON serializa v e o usa como resposta do flow.
func (m *Model) RespondJSON(flow string, v any) *Model {
	payload, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return m.set(flow, Reply{Payload: payload})
}

// Fail faz o flow devolver err como falha do provedor.
func (m *Model) Fail(flow string, err error) *Model {
	return m.set(flow, Reply{Err: err})
}

// Default define a resposta para flows sem roteiro.
func (m *Model) Default(payload string) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &Reply{Payload: []byte(payload)}
	return m
}

func (m *Model) set(flow string, r Reply) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[flow] = r
	return m
}

func (m *Model) Generate(ctx context.Context, req flows.ModelRequest) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	reply, ok := m.replies[req.Flow]
	if !ok && m.fallback != nil {
		reply, ok = *m.fallback, true
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return reply.Payload, reply.Err
}

// Calls devolve uma cópia das chamadas recebidas.
func (m *Model) Calls() []flows.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flows.ModelRequest(nil), m.calls...)
}

// CallCount conta as chamadas recebidas por um flow; "" conta todas.
func (m *Model) CallCount(flow string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if flow == "" {
		return len(m.calls)
	}
	n := 0
	for _, c := range m.calls {
		if c.Flow == flow {
			n++
		}
	}
	return n
}
