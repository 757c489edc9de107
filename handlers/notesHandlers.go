package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"taskflow-backend/firebase"
	"taskflow-backend/models"
	"taskflow-backend/utilities"
)

// Rota: POST /notes
func (h *Handler) CreateNoteHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input models.CreateNoteInput
	if err := decodeBody(r, &input); err != nil {
		utilities.LogError(err, "CreateNoteHandler: Erro ao decodificar JSON da nota")
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	note, err := models.NewNote(uid, input, h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Notes.Create(r.Context(), &note); err != nil {
		utilities.LogError(err, "CreateNoteHandler: Erro ao salvar nota")
		writeError(w, http.StatusInternalServerError, "Erro ao salvar nota")
		return
	}

	utilities.LogInfo("CreateNoteHandler: Nota %s criada por %s", note.ID, uid)
	writeJSON(w, http.StatusCreated, note)
}

// Rota: GET /notes
func (h *Handler) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	notes, err := h.Notes.ListByOwner(r.Context(), uid)
	if err != nil {
		utilities.LogError(err, "ListNotesHandler: Erro ao listar notas")
		writeError(w, http.StatusInternalServerError, "Erro ao listar notas")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// loadNote busca a nota da rota; notas são privadas do dono.
func (h *Handler) loadNote(w http.ResponseWriter, r *http.Request, uid string) *models.Note {
	noteID := mux.Vars(r)["note_id"]
	note, err := h.Notes.Get(r.Context(), noteID)
	if errors.Is(err, firebase.ErrNotFound) || (err == nil && note.OwnerID != uid) {
		writeError(w, http.StatusNotFound, "Nota não encontrada")
		return nil
	}
	if err != nil {
		utilities.LogError(err, "Erro ao buscar nota "+noteID)
		writeError(w, http.StatusInternalServerError, "Erro ao buscar nota")
		return nil
	}
	return note
}

// Rota: GET /notes/{note_id}
func (h *Handler) GetNoteHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	if note := h.loadNote(w, r, uid); note != nil {
		writeJSON(w, http.StatusOK, note)
	}
}

// Rota: DELETE /notes/{note_id}
func (h *Handler) DeleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	note := h.loadNote(w, r, uid)
	if note == nil {
		return
	}
	if err := h.Notes.Delete(r.Context(), note.ID); err != nil {
		utilities.LogError(err, "DeleteNoteHandler: Erro ao deletar nota")
		writeError(w, http.StatusInternalServerError, "Erro ao deletar nota")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Nota deletada com sucesso"})
}
