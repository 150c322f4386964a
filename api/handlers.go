/*
handlers.go - HTTP handler implementations

PURPOSE:
  Translates HTTP requests into desk-session commands and engine state
  back into wire DTOs. Handlers stay thin: every rule lives in the
  engine packages; this layer only decodes, dispatches, and maps errors
  to status codes.

ERROR MAPPING:
  - unknown/expired desk session            404
  - malformed body or field validation      400
  - PMS rejected the operation (4xx)        422
  - operation already in flight             409
  - PMS not found                           404
  - PMS unreachable / 5xx                   502
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stayfront/frontdesk-engine/activity"
	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/desk"
	"github.com/stayfront/frontdesk-engine/hold"
	"github.com/stayfront/frontdesk-engine/payment"
	"github.com/stayfront/frontdesk-engine/pms"
	"github.com/stayfront/frontdesk-engine/roomstatus"
)

// Handler carries the dependencies of every route.
type Handler struct {
	sessions *Sessions
	ledger   activity.Log
}

// NewHandler wires the handler set.
func NewHandler(sessions *Sessions, ledger activity.Log) *Handler {
	return &Handler{sessions: sessions, ledger: ledger}
}

// ===== DESK LIFECYCLE =====

// OpenDesk creates a desk session for a property and week.
func (h *Handler) OpenDesk(w http.ResponseWriter, r *http.Request) {
	var req openDeskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PropertyID == "" {
		writeError(w, http.StatusBadRequest, "propertyId is required")
		return
	}
	role := actor.Role(req.Actor.Role)
	if role != actor.RoleAdmin && role != actor.RoleHost {
		writeError(w, http.StatusBadRequest, "actor.role must be admin or host")
		return
	}

	start := calendar.Today()
	if req.WeekStart != "" {
		d, err := calendar.ParseDate(req.WeekStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekStart must be YYYY-MM-DD")
			return
		}
		start = d
	}
	week := calendar.WeekOf(start)

	by := actor.Actor{Role: role, ID: req.Actor.ID, Label: req.Actor.Label}
	id, sess := h.sessions.Open(req.PropertyID, by, week)
	deskSessionsOpened.Inc()

	// First snapshot load; the session is usable even when it fails.
	_ = sess.Refresh(r.Context())

	writeJSON(w, http.StatusCreated, deskResponse{
		ID:         id,
		PropertyID: req.PropertyID,
		Week:       toWeekDTO(week),
	})
}

// CloseDesk ends a desk session.
func (h *Handler) CloseDesk(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Close(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "desk session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the desk or writes the 404.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*desk.Session, bool) {
	s, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "desk session not found")
	}
	return s, ok
}

// ===== BOARD =====

// GetBoard returns the current board model.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.boardResponse(s))
}

// RefreshBoard forces a snapshot refresh; ?week= navigates first.
func (h *Handler) RefreshBoard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var err error
	if weekParam := r.URL.Query().Get("week"); weekParam != "" {
		start, perr := calendar.ParseDate(weekParam)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "week must be YYYY-MM-DD")
			return
		}
		err = s.SetWeek(r.Context(), calendar.WeekOf(start))
	} else {
		err = s.Refresh(r.Context())
	}
	if err != nil {
		// the response still carries the board state (stale board or error)
		writeJSON(w, statusFor(err), h.boardResponse(s))
		return
	}
	writeJSON(w, http.StatusOK, h.boardResponse(s))
}

func (h *Handler) boardResponse(s *desk.Session) boardResponse {
	state := s.Board()
	resp := boardResponse{
		State:         toStateDTO(state),
		Week:          toWeekDTO(s.Week()),
		ActiveContext: contextKindName(s.Active().Kind),
	}
	if b, ok := state.Value(); ok {
		resp.Board = toBoardDTO(b)
	}
	return resp
}

// ===== ACTIVE CONTEXT =====

// SetContext opens or closes the active workflow.
func (h *Handler) SetContext(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "close":
		s.CloseContext()
	case "new-booking":
		day, err := calendar.ParseDate(req.Date)
		if err != nil || req.RoomTypeID == "" || req.RoomID == "" {
			writeError(w, http.StatusBadRequest, "roomTypeId, roomId and date are required")
			return
		}
		if err := s.StartBooking(r.Context(), req.RoomTypeID, req.RoomID, day); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	case "details", "room-status":
		day, err := calendar.ParseDate(req.Date)
		if err != nil || req.RoomID == "" {
			writeError(w, http.StatusBadRequest, "roomId and date are required")
			return
		}
		slot := findSlot(s, req.RoomID, day)
		if req.Action == "details" {
			s.OpenDetails(req.RoomTypeID, req.RoomID, day, slot)
		} else {
			s.OpenRoomStatus(req.RoomTypeID, req.RoomID, day, slot)
		}
	default:
		writeError(w, http.StatusBadRequest, "action must be new-booking, details, room-status or close")
		return
	}

	writeJSON(w, http.StatusOK, h.boardResponse(s))
}

// findSlot looks the cell up on the loaded board; nil when the board has no
// such cell (the workflow still opens, just without slot details).
func findSlot(s *desk.Session, roomID string, day calendar.Date) *board.Slot {
	b, ok := s.Board().Value()
	if !ok || b == nil {
		return nil
	}
	for _, rt := range b.RoomTypes {
		for _, rm := range rt.Rooms {
			if rm.ID != roomID {
				continue
			}
			for i := range rm.Slots {
				if rm.Slots[i].Date.Equal(day) {
					return &rm.Slots[i]
				}
			}
		}
	}
	return nil
}

// ===== DRAFT =====

// UpdateDraft patches the booking draft. Field order matters: date clicks
// apply before everything else so a click+apply arrives as one request.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	drafts := s.Drafts()
	if req.ClickDate != nil {
		day, err := calendar.ParseDate(*req.ClickDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "clickDate must be YYYY-MM-DD")
			return
		}
		drafts.ClickDate(day)
	}
	if req.ApplyDates {
		if err := drafts.ApplySelection(r.Context()); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}
	if req.RequestedRooms != nil {
		if err := drafts.SetRequestedRooms(r.Context(), *req.RequestedRooms); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}
	if req.ToggleRoomID != nil {
		drafts.ToggleRoom(*req.ToggleRoomID)
	}
	if req.Guests != nil {
		drafts.SetGuests(req.Guests.Adults, req.Guests.Children, req.Guests.Infants)
	}
	if req.MealPlanID != nil {
		drafts.SetMealPlan(*req.MealPlanID)
	}
	if req.Notes != nil {
		drafts.SetNotes(*req.Notes)
	}

	writeJSON(w, http.StatusOK, h.draftResponse(s))
}

// GetQuote returns validation plus the pricing summary.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(s).Quote)
}

func (h *Handler) draftResponse(s *desk.Session) draftResponse {
	drafts := s.Drafts()
	d := drafts.Draft()
	v := drafts.Validate()
	summary, _ := drafts.Quote() // quote errors already surface in validation

	resp := draftResponse{
		State:           toStateDTO(drafts.State()),
		From:            d.From.String(),
		To:              d.To.String(),
		Guests:          guestsDTO{Adults: d.Adults, Children: d.Children, Infants: d.Infants},
		MealPlanID:      d.MealPlanID,
		SelectedRoomIDs: d.SelectedRoomIDs,
		Notes:           d.Notes,
		Quote:           toQuoteResponse(v, summary),
	}
	if resp.SelectedRoomIDs == nil {
		resp.SelectedRoomIDs = []string{}
	}
	return resp
}

// ===== HOLD + PAYMENTS =====

// PlaceHold places the 15-minute hold for the current draft.
func (h *Handler) PlaceHold(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.PlaceHold(r.Context()); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	receipt, _ := s.Holds().Receipt()
	writeJSON(w, http.StatusCreated, toHoldResponse(receipt))
}

// SaveRecipient stores who the payment link goes to.
func (h *Handler) SaveRecipient(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.PaymentLink().SaveRecipient(req.FullName, req.Email, req.Phone); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreatePaymentLink issues (or resends) the payment link.
func (h *Handler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.CreatePaymentLink(r.Context()); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	receipt, _ := s.PaymentLink().State().Value()
	resp := linkResponse{URL: receipt.URL, OrderID: receipt.OrderID, Amount: receipt.Amount}
	if !receipt.ExpiresAt.IsZero() {
		resp.ExpiresAt = receipt.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SubmitCash finalizes the held booking as paid in cash.
func (h *Handler) SubmitCash(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req cashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form := payment.CashForm{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		ReceivedBy:    req.ReceivedBy,
		ReceiptNumber: req.ReceiptNumber,
	}
	if req.PaymentDate != "" {
		d, err := calendar.ParseDate(req.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "paymentDate must be YYYY-MM-DD")
			return
		}
		form.PaymentDate = d
	}
	s.Cash().UpdateForm(form)

	if err := s.SubmitCash(r.Context()); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	receipt, _ := s.Cash().State().Value()
	writeJSON(w, http.StatusCreated, cashResponse{
		BookingNumber: receipt.BookingNumber,
		TransactionID: receipt.TransactionID,
		Amount:        receipt.Amount,
	})
}

// ===== ROOM STATUS =====

// CreateRoomStatus blocks a room or marks it maintenance/out-of-service.
func (h *Handler) CreateRoomStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, ok := statusKind(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, "kind must be blocked, maintenance or out_of_service")
		return
	}

	in := roomstatus.CreateInput{
		Kind:               kind,
		PropertyRoomTypeID: req.RoomTypeID,
		RoomID:             req.RoomID,
		ReleaseAfterHours:  req.ReleaseAfterHours,
		Reason:             req.Reason,
	}
	if req.Date != "" {
		d, err := calendar.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		in.Date = d
	}

	if err := s.CreateRoomStatus(r.Context(), in); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	outcome, _ := s.RoomStatus().State().Value()
	writeJSON(w, http.StatusCreated, statusResponse{Message: outcome.Message})
}

// ReleaseRoomStatus releases one status record. Releasing an absent record
// succeeds as a no-op end to end.
func (h *Handler) ReleaseRoomStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	kind, ok := statusKind(r.URL.Query().Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "kind query parameter must be blocked, maintenance or out_of_service")
		return
	}
	availabilityID := chi.URLParam(r, "availabilityID")

	if err := s.ReleaseRoomStatus(r.Context(), kind, availabilityID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusKind(s string) (pms.StatusKind, bool) {
	switch pms.StatusKind(s) {
	case pms.StatusBlocked, pms.StatusMaintenance, pms.StatusOutOfService:
		return pms.StatusKind(s), true
	}
	return "", false
}

// ===== ACTIVITY =====

// ListActivity returns a property's ledger, newest first.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.ledger.ListByProperty(r.Context(), propertyID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read activity")
		return
	}
	out := make([]activityRecordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toActivityDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== HELPERS =====

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps engine and PMS errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pms.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pms.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pms.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, hold.ErrInFlight),
		errors.Is(err, hold.ErrDraftChanged),
		errors.Is(err, payment.ErrInFlight),
		errors.Is(err, roomstatus.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, hold.ErrDraftInvalid),
		errors.Is(err, hold.ErrNoPrice),
		errors.Is(err, payment.ErrNoHold),
		errors.Is(err, payment.ErrNoRecipient),
		errors.Is(err, payment.ErrNoPrice),
		errors.Is(err, payment.ErrRecipientInvalid),
		errors.Is(err, payment.ErrFormInvalid),
		errors.Is(err, roomstatus.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
