package flows

import (
	"errors"
	"fmt"
)

// ErrorKind classifica a falha de uma execução de flow.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidInput
	KindExternalCall
	KindEmptyResponse
	KindSchemaMismatch
)

var (
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrExternalCall   = errors.New("falha na chamada ao modelo")
	ErrEmptyResponse  = errors.New("resposta vazia da IA")
	ErrSchemaMismatch = errors.New("resposta malformada da IA")
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindExternalCall:
		return "external_call"
	case KindEmptyResponse:
		return "empty_response"
	case KindSchemaMismatch:
		return "schema_mismatch"
	}
	return "none"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindExternalCall:
		return ErrExternalCall
	case KindEmptyResponse:
		return ErrEmptyResponse
	case KindSchemaMismatch:
		return ErrSchemaMismatch
	}
	return nil
}

// FlowError é a falha de um flow. errors.Is funciona tanto com o sentinela do
// tipo (ErrSchemaMismatch, ...) quanto com o erro original do provedor.
type FlowError struct {
	Flow   string
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("flow %s: %v", e.Flow, e.Kind.sentinel())
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FlowError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf devolve o tipo de falha de err, ou KindNone se err não veio de um flow.
func KindOf(err error) ErrorKind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNone
}

// Result é o resultado marcado de uma execução: Ok(valor) ou Err(tipo, detalhe).
type Result[T any] struct {
	value T
	err   *FlowError
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

func Err[T any](e *FlowError) Result[T] {
	return Result[T]{err: e}
}

func (r Result[T]) IsOk() bool { return r.err == nil }

func (r Result[T]) Kind() ErrorKind {
	if r.err == nil {
		return KindNone
	}
	return r.err.Kind
}

// Failure devolve a falha, ou nil quando o resultado é Ok.
func (r Result[T]) Failure() *FlowError { return r.err }

// Get converte para o par idiomático (valor, erro).
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
