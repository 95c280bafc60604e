package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/dispatch-board/internal/board"
	"github.com/example/dispatch-board/internal/logging"
)

const dayFormat = "2006-01-02"

// BoardHandler exposes the board engine over HTTP.
type BoardHandler struct {
	board     *board.Board
	responder responder
}

// NewBoardHandler creates the handler.
func NewBoardHandler(b *board.Board, logger logging.Logger) *BoardHandler {
	return &BoardHandler{board: b, responder: newResponder(logger)}
}

// SelectDay switches the board to a new day, cancelling pending writes.
func (h *BoardHandler) SelectDay(w http.ResponseWriter, r *http.Request) {
	var req selectDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	day, err := time.ParseInLocation(dayFormat, strings.TrimSpace(req.Day), time.Local)
	if err != nil {
		h.responder.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.board.SelectDay(r.Context(), day); err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusOK, h.snapshot())
}

// Snapshot renders the current day as technician rows with positioned
// entries.
func (h *BoardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(w, http.StatusOK, h.snapshot())
}

// Technicians lists the board rows.
func (h *BoardHandler) Technicians(w http.ResponseWriter, r *http.Request) {
	technicians := h.board.Technicians()
	out := make([]technicianDTO, 0, len(technicians))
	for _, technician := range technicians {
		out = append(out, technicianDTO{ID: technician.ID, DisplayName: technician.DisplayName})
	}
	h.responder.writeJSON(w, http.StatusOK, technicianListResponse{Technicians: out})
}

// SearchWorkItems refreshes and returns the unassigned work item panel.
func (h *BoardHandler) SearchWorkItems(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := board.WorkItemQuery{
		Text: strings.TrimSpace(values.Get("query")),
	}
	for _, raw := range values["type"] {
		if t := strings.TrimSpace(raw); t != "" {
			query.Types = append(query.Types, board.WorkItemType(t))
		}
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		query.Page = page
	}
	if pageSize, err := strconv.Atoi(values.Get("page_size")); err == nil {
		query.PageSize = pageSize
	}

	page, err := h.board.RefreshWorkItems(r.Context(), query)
	if err != nil {
		h.responder.handleBoardError(w, err)
		return
	}

	items := make([]workItemDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, workItemDTO{
			ID:          item.ID,
			Type:        string(item.Type),
			Name:        item.Name,
			Description: item.Description,
			Billable:    item.Billable,
		})
	}
	h.responder.writeJSON(w, http.StatusOK, workItemListResponse{Items: items, Total: page.Total})
}

// Drop creates a schedule entry by dropping a work item onto a cell.
func (h *BoardHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	slotStart, err := parseInstant(req.SlotStart)
	if err != nil {
		h.responder.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.board.BeginWorkItemDrag(req.WorkItemID, 0); err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	entry, err := h.board.DropOnCell(board.Cell{TechnicianID: req.TechnicianID, SlotStart: slotStart})
	if err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusCreated, entryResponse{Entry: h.toEntryDTO(entry)})
}

// Move shifts an existing entry to a new technician and time, preserving its
// duration.
func (h *BoardHandler) Move(w http.ResponseWriter, r *http.Request, entryID string) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	slotStart, err := parseInstant(req.SlotStart)
	if err != nil {
		h.responder.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.board.BeginEntryDrag(entryID, 0); err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	entry, err := h.board.DropOnCell(board.Cell{TechnicianID: req.TechnicianID, SlotStart: slotStart})
	if err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusOK, entryResponse{Entry: h.toEntryDTO(entry)})
}

// Resize adjusts one edge of an entry by a pointer displacement expressed in
// pixels.
func (h *BoardHandler) Resize(w http.ResponseWriter, r *http.Request, entryID string) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	edge := board.ResizeEdge(strings.TrimSpace(req.Edge))
	if edge != board.EdgeStart && edge != board.EdgeEnd {
		h.responder.writeError(w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.ColumnPixelWidth <= 0 {
		h.responder.writeError(w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.board.BeginResize(entryID, edge, 0); err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	applied := h.board.TrackResize(req.PixelDelta, req.ColumnPixelWidth)
	h.board.EndResize()

	entry, ok := h.board.Entry(entryID)
	if !ok {
		h.responder.handleBoardError(w, board.ErrNotFound)
		return
	}
	h.responder.writeJSON(w, http.StatusOK, resizeResponse{Entry: h.toEntryDTO(entry), Applied: applied})
}

// Delete removes an entry from the board.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request, entryID string) {
	if err := h.board.DeleteEntry(entryID); err != nil {
		h.responder.handleBoardError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusNoContent, nil)
}

func (h *BoardHandler) snapshot() boardSnapshotResponse {
	technicians := h.board.Technicians()
	rows := make([]rowDTO, 0, len(technicians))
	for _, technician := range technicians {
		entries := h.board.EntriesForTechnician(technician.ID)
		dtos := make([]entryDTO, 0, len(entries))
		for _, entry := range entries {
			dtos = append(dtos, h.toEntryDTO(entry))
		}
		rows = append(rows, rowDTO{
			Technician: technicianDTO{ID: technician.ID, DisplayName: technician.DisplayName},
			Entries:    dtos,
		})
	}

	geometry := h.board.Geometry()
	return boardSnapshotResponse{
		Day:       h.board.Day().Format(dayFormat),
		StartHour: geometry.StartHour,
		EndHour:   geometry.EndHour,
		Rows:      rows,
	}
}

func (h *BoardHandler) toEntryDTO(entry board.ScheduleEntry) entryDTO {
	span := h.board.Span(entry)
	return entryDTO{
		ID:            entry.ID,
		WorkItemID:    entry.WorkItemID,
		WorkItemType:  string(entry.WorkItemType),
		Title:         entry.Title,
		Status:        string(entry.Status),
		TechnicianIDs: append([]string(nil), entry.TechnicianIDs...),
		Start:         entry.Start.Format(time.RFC3339),
		End:           entry.End.Format(time.RFC3339),
		Span:          spanDTO{OffsetPercent: span.OffsetPercent, WidthPercent: span.WidthPercent},
	}
}

func parseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

type selectDayRequest struct {
	Day string `json:"day"`
}

type dropRequest struct {
	WorkItemID   string `json:"work_item_id"`
	TechnicianID string `json:"technician_id"`
	SlotStart    string `json:"slot_start"`
}

type moveRequest struct {
	TechnicianID string `json:"technician_id"`
	SlotStart    string `json:"slot_start"`
}

type resizeRequest struct {
	Edge             string  `json:"edge"`
	PixelDelta       float64 `json:"pixel_delta"`
	ColumnPixelWidth float64 `json:"column_pixel_width"`
}

type entryResponse struct {
	Entry entryDTO `json:"entry"`
}

type resizeResponse struct {
	Entry   entryDTO `json:"entry"`
	Applied bool     `json:"applied"`
}

type boardSnapshotResponse struct {
	Day       string   `json:"day"`
	StartHour int      `json:"start_hour"`
	EndHour   int      `json:"end_hour"`
	Rows      []rowDTO `json:"rows"`
}

type rowDTO struct {
	Technician technicianDTO `json:"technician"`
	Entries    []entryDTO    `json:"entries"`
}

type technicianDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type technicianListResponse struct {
	Technicians []technicianDTO `json:"technicians"`
}

type workItemDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Billable    bool   `json:"billable"`
}

type workItemListResponse struct {
	Items []workItemDTO `json:"items"`
	Total int           `json:"total"`
}

type entryDTO struct {
	ID            string   `json:"id"`
	WorkItemID    string   `json:"work_item_id"`
	WorkItemType  string   `json:"work_item_type"`
	Title         string   `json:"title"`
	Status        string   `json:"status"`
	TechnicianIDs []string `json:"technician_ids"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Span          spanDTO  `json:"span"`
}

type spanDTO struct {
	OffsetPercent float64 `json:"offset_percent"`
	WidthPercent  float64 `json:"width_percent"`
}
