package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	sewav1 "sewa/api/sewa/v1"
	"sewa/internal/apperr"
	"sewa/internal/auth"
	"sewa/internal/donation"
	"sewa/internal/registry"
	"sewa/models"
)

// hotel resolves the verified hotel behind the request.
func (h *Handler) hotel(w http.ResponseWriter, r *http.Request) (*models.Hotel, bool) {
	p, _ := auth.FromContext(r.Context())
	ht, err := h.svcs.Registry.ActiveHotel(r.Context(), p.ID)
	if err != nil {
		respondError(w, h.log, err)
		return nil, false
	}
	return ht, true
}

func (h *Handler) ngo(w http.ResponseWriter, r *http.Request) (*models.Ngo, bool) {
	p, _ := auth.FromContext(r.Context())
	n, err := h.svcs.Registry.ActiveNgo(r.Context(), p.ID)
	if err != nil {
		respondError(w, h.log, err)
		return nil, false
	}
	return n, true
}

func (h *Handler) SignupHotel(w http.ResponseWriter, r *http.Request) {
	var in registry.HotelInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Registry.RegisterHotel(r.Context(), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handler) SignupNgo(w http.ResponseWriter, r *http.Request) {
	var in registry.NgoInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Registry.RegisterNgo(r.Context(), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handler) SubmitDonation(w http.ResponseWriter, r *http.Request) {
	ht, ok := h.hotel(w, r)
	if !ok {
		return
	}
	var req sewav1.SubmitDonationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	in, err := req.Input(ht, h.svcs.Location)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Donations.Submit(r.Context(), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handler) DonationHistory(w http.ResponseWriter, r *http.Request) {
	ht, ok := h.hotel(w, r)
	if !ok {
		return
	}
	list, err := h.svcs.Donations.History(r.Context(), ht.ID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, sewav1.DonationList{Donations: list})
}

// GetDonation is open to any verified partner and to admins.
func (h *Handler) GetDonation(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	switch p.Kind {
	case auth.KindHotel:
		if _, ok := h.hotel(w, r); !ok {
			return
		}
	case auth.KindNgo:
		if _, ok := h.ngo(w, r); !ok {
			return
		}
	}
	d, err := h.svcs.Donations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ngo(w, r)
	if !ok {
		return
	}
	list, err := h.svcs.Donations.ListAvailable(r.Context(), n.ID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) AcceptDonation(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ngo(w, r)
	if !ok {
		return
	}
	res, err := h.svcs.Donations.Accept(r.Context(), chi.URLParam(r, "id"), n.ID, n.OrganizationName)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) RejectDonation(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ngo(w, r)
	if !ok {
		return
	}
	if err := h.svcs.Donations.Reject(r.Context(), chi.URLParam(r, "id"), n.ID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, sewav1.MessageResponse{Message: donation.MsgRejected})
}

func (h *Handler) NgoHistory(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ngo(w, r)
	if !ok {
		return
	}
	list, err := h.svcs.Donations.NgoHistory(r.Context(), n.ID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, sewav1.DonationList{Donations: list})
}

func (h *Handler) GenerateOTP(w http.ResponseWriter, r *http.Request) {
	ht, ok := h.hotel(w, r)
	if !ok {
		return
	}
	var req sewav1.GenerateOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Pickups.Issue(r.Context(), ht.ID, req.NgoID, req.DonationID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ngo(w, r)
	if !ok {
		return
	}
	var req sewav1.VerifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Pickups.Verify(r.Context(), n.ID, req.OTP)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ListPickups shows the caller's own pickups; hotels and NGOs only.
func (h *Handler) ListPickups(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var (
		list sewav1.PickupList
		err  error
	)
	switch p.Kind {
	case auth.KindHotel:
		ht, ok := h.hotel(w, r)
		if !ok {
			return
		}
		list.Pickups, err = h.svcs.Pickups.ListForHotel(r.Context(), ht.ID)
	case auth.KindNgo:
		n, ok := h.ngo(w, r)
		if !ok {
			return
		}
		list.Pickups, err = h.svcs.Pickups.ListForNgo(r.Context(), n.ID)
	default:
		err = apperr.Forbidden("pickups are listed per hotel or NGO")
	}
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	list, err := h.svcs.Registry.Pending(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	list, err := h.svcs.Registry.Overview(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type verifyBody struct {
	Action string `json:"action"`
}

func (h *Handler) VerifyHotel(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Registry.VerifyHotel(r.Context(), chi.URLParam(r, "id"), registry.Action(body.Action))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) VerifyNgo(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, h.log, err)
		return
	}
	res, err := h.svcs.Registry.VerifyNgo(r.Context(), chi.URLParam(r, "id"), registry.Action(body.Action))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	n, err := h.svcs.Donations.SweepExpired(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, sewav1.SweepResponse{Expired: n})
}
