package handlers

import (
	"net/http"

	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
)

type TransactionHandler struct {
	pages
	transactionService services.TransactionService
	catalogService     services.CatalogService
}

func NewTransactionHandler(rd *Renderer, txs services.TransactionService, cs services.CatalogService) *TransactionHandler {
	return &TransactionHandler{pages: newPages(rd, rd.logger), transactionService: txs, catalogService: cs}
}

type transactionFormPage struct {
	Log     *services.TransactionLog
	Types   []models.TransactionType
	Catalog []models.CatalogEntry
}

var transactionTypes = []models.TransactionType{models.TransactionTransfer, models.TransactionTeraCaptain}

// List обрабатывает GET /tournament/{tournamentID}/transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txLog, err := h.transactionService.List(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "Transactions")
	data.Tournament = txLog.Tournament
	data.Data = txLog
	h.show(w, r, "transactions.html", data)
}

func (h *TransactionHandler) formData(r *http.Request) (*PageData, error) {
	txLog, err := h.transactionService.List(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		return nil, err
	}
	data := h.data(r, "New transaction")
	data.Tournament = txLog.Tournament
	data.Data = transactionFormPage{Log: txLog, Types: transactionTypes, Catalog: h.catalogService.All()}
	return data, nil
}

// NewPage обрабатывает GET /tournament/{tournamentID}/transactions/new
func (h *TransactionHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.formData(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data.Form.Set("player_id", r.URL.Query().Get("player"))
	data.Form.Set("type", string(models.TransactionTransfer))
	h.show(w, r, "transaction_form.html", data)
}

func (h *TransactionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	data, err := h.formData(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "transaction_form.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}

	_, err = h.transactionService.Apply(r.Context(), data.Tournament.ID, services.TransactionInput{
		PlayerID: r.PostForm.Get("player_id"),
		Type:     models.TransactionType(r.PostForm.Get("type")),
		Out:      r.PostForm.Get("out"),
		In:       r.PostForm.Get("in"),
	})
	if err != nil {
		h.formOrFail(w, r, "transaction_form.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(data.Tournament.ID, "transactions"))
}
