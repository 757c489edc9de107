package models

import (
	"errors"
	"strings"
	"time"
)

// Note representa uma nota armazenada no Firestore (coleção "notes").
type Note struct {
	ID        string    `json:"id" firestore:"-"`
	OwnerID   string    `json:"ownerId" firestore:"ownerId"`
	Title     string    `json:"title" firestore:"title"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

type CreateNoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

var ErrInvalidNote = errors.New("nota inválida: conteúdo é obrigatório")

// NewNote monta a nota do dono ownerID. O título é opcional; o conteúdo não.
func NewNote(ownerID string, in CreateNoteInput, now time.Time) (Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return Note{}, ErrInvalidNote
	}
	return Note{OwnerID: ownerID, Title: strings.TrimSpace(in.Title), Content: in.Content, CreatedAt: now}, nil
}
