package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"bizportal/internal/domain"
	"bizportal/internal/sqlinline"
)

// Dashboard joins the user's membership, the live content count of every
// allowed service, and the progress ledger. Totals always come from the live
// catalog, completed counts from the stored completed set, so the client can
// not see a stale denominator.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)
	usr, err := a.loadUser(r.Context(), auth.ID)
	if err != nil {
		a.fail(w, err, "User not found")
		return
	}
	if !usr.HasMembership() {
		a.error(w, http.StatusBadRequest, "No membership assigned to this user yet.")
		return
	}
	membership, err := a.loadMembership(r.Context(), *usr.MembershipID)
	if err != nil {
		a.fail(w, err, "Membership not found")
		return
	}
	services, err := a.loadServicesByIDs(r.Context(), membership.AllowedServiceIDs)
	if err != nil {
		a.fail(w, err, "Failed to load services")
		return
	}

	tier := membership.PlanName
	byID := make(map[string]domain.Service, len(services))
	servicesOut := make([]map[string]any, 0, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
		contents := svc.PlanContents.ForTier(tier)
		servicesOut = append(servicesOut, map[string]any{
			"id":          svc.ID,
			"name":        svc.Name,
			"description": svc.Description,
			"count":       len(contents),
			"contents":    contentsOut(contents),
		})
	}

	progressOut := make([]map[string]any, 0, len(usr.Progress))
	for _, entry := range usr.Progress {
		total := 0
		if svc, ok := byID[entry.ServiceID]; ok {
			total = len(svc.PlanContents.ForTier(tier))
		}
		completed := len(entry.CompletedContents)
		progressOut = append(progressOut, map[string]any{
			"serviceId":       entry.ServiceID,
			"completed":       completed,
			"total":           total,
			"progressPercent": domain.Percent(completed, total),
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"membership": map[string]any{
			"planName":     membership.PlanName,
			"price":        membership.Price,
			"validityDays": membership.ValidityDays,
			"validTill":    usr.ValidTill,
		},
		"services": servicesOut,
		"progress": progressOut,
	})
}

type updateProgressRequest struct {
	ServiceID string `json:"serviceId"`
	ContentID string `json:"contentId"`
}

// UpdateContentProgress records one content open. Idempotent: re-opening an
// already-counted item returns the same numbers. There is no locking, so
// concurrent opens for the same user race on the ledger write (last save
// wins); the client's refresh action recovers from any lost update.
func (a *App) UpdateContentProgress(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ServiceID == "" || req.ContentID == "" {
		a.error(w, http.StatusBadRequest, "serviceId and contentId are required")
		return
	}

	usr, err := a.loadUser(r.Context(), auth.ID)
	if err != nil {
		a.fail(w, err, "User not found")
		return
	}
	if !usr.HasMembership() {
		a.error(w, http.StatusBadRequest, "No membership assigned")
		return
	}
	membership, err := a.loadMembership(r.Context(), *usr.MembershipID)
	if err != nil {
		a.fail(w, err, "Membership not found")
		return
	}
	if !membership.AllowsService(req.ServiceID) {
		a.error(w, http.StatusNotFound, "Service not found in membership")
		return
	}
	svc, err := a.loadService(r.Context(), req.ServiceID)
	if err != nil {
		a.fail(w, err, "Service not found")
		return
	}

	total := len(svc.PlanContents.ForTier(membership.PlanName))
	ledger, entry := usr.Progress.Record(req.ServiceID, req.ContentID, total)
	if err := a.saveProgress(r.Context(), usr.ID, ledger); err != nil {
		a.fail(w, err, "Failed to update progress")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Progress updated successfully",
		"progress": map[string]any{
			"completed": len(entry.CompletedContents),
			"total":     total,
			"percent":   entry.ProgressPercent,
		},
	})
}

// StudyMaterials lists every service's content for the user's plan tier.
// Services with nothing at that tier are excluded entirely.
func (a *App) StudyMaterials(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)
	usr, err := a.loadUser(r.Context(), auth.ID)
	if err != nil {
		a.fail(w, err, "User not found")
		return
	}
	if !usr.HasMembership() {
		a.error(w, http.StatusBadRequest, "User or membership not found")
		return
	}
	membership, err := a.loadMembership(r.Context(), *usr.MembershipID)
	if err != nil {
		a.fail(w, err, "Membership not found")
		return
	}
	services, err := a.loadAllServices(r.Context())
	if err != nil {
		a.fail(w, err, "Failed to load services")
		return
	}

	tier := membership.PlanName
	materials := make([]map[string]any, 0, len(services))
	totalContents := 0
	for _, svc := range services {
		contents := svc.PlanContents.ForTier(tier)
		if len(contents) == 0 {
			continue
		}
		totalContents += len(contents)
		materials = append(materials, map[string]any{
			"serviceId":   svc.ID,
			"serviceName": svc.Name,
			"contents":    contentsOut(contents),
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":        true,
		"plan":           tier,
		"studyMaterials": materials,
		"totalServices":  len(materials),
		"totalContents":  totalContents,
	})
}

// AssignSelfMembership activates a plan for the calling user. The client's
// payment step is simulated; there is no server-side charge record, and
// re-assigning simply resets the validity window.
func (a *App) AssignSelfMembership(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)
	membershipID := chi.URLParam(r, "membershipId")

	membership, err := a.loadMembership(r.Context(), membershipID)
	if err != nil {
		a.fail(w, err, "Membership not found")
		return
	}

	validTill := membership.ValidUntil(time.Now())
	row := a.SQL.QueryRow(r.Context(), sqlinline.QAssignMembership, auth.ID, membership.ID, validTill)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "User not found")
			return
		}
		a.fail(w, err, "Failed to assign membership")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Membership '" + string(membership.PlanName) + "' assigned successfully!",
		"data": map[string]any{
			"id":        id,
			"plan":      membership.PlanName,
			"validTill": validTill,
		},
	})
}

// MembershipPlans returns the marketing benefit matrix. Also exposed without
// auth for the public pricing page.
func (a *App) MembershipPlans(w http.ResponseWriter, r *http.Request) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectBenefitMatrix)
	matrix, err := scanBenefitMatrix(row)
	if err != nil {
		a.fail(w, err, "No data found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "data": matrix})
}

// AllMemberships lists the purchasable plan definitions.
func (a *App) AllMemberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := a.listMemberships(r.Context())
	if err != nil {
		a.fail(w, err, "Failed to load memberships")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "data": membershipsOut(memberships)})
}

// MyDetails returns the caller's full record with membership joined.
func (a *App) MyDetails(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)
	usr, err := a.loadUser(r.Context(), auth.ID)
	if err != nil {
		a.fail(w, err, "User not found")
		return
	}

	out := map[string]any{
		"id":           usr.ID,
		"businessName": usr.BusinessName,
		"ownerName":    usr.OwnerName,
		"industry":     usr.Industry,
		"contactInfo":  usr.ContactInfo,
		"gstOrPan":     usr.GstOrPan,
		"city":         usr.City,
		"website":      usr.Website,
		"email":        usr.Email,
		"role":         usr.Role,
		"isVerified":   usr.IsVerified,
		"validTill":    usr.ValidTill,
		"progress":     usr.Progress,
		"createdAt":    usr.CreatedAt,
	}
	if usr.HasMembership() {
		if membership, err := a.loadMembership(r.Context(), *usr.MembershipID); err == nil {
			out["membership"] = membershipOut(*membership)
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User details fetched successfully",
		"data":    out,
	})
}

type enquiryRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (a *App) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)

	var req enquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "All fields are required")
		return
	}

	var id string
	var createdAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertEnquiry, auth.ID, req.Name, req.Phone, req.Description)
	if err := row.Scan(&id, &createdAt); err != nil {
		a.fail(w, err, "Failed to submit enquiry")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Enquiry submitted successfully",
		"enquiry": map[string]any{
			"id":          id,
			"userId":      auth.ID,
			"name":        req.Name,
			"phone":       req.Phone,
			"description": req.Description,
			"createdAt":   createdAt,
		},
	})
}

type referralRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	CompanyName   string `json:"companyName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
}

func (a *App) CreateReferral(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)

	var req referralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "All fields are required")
		return
	}

	var id string
	var status domain.ReferralStatus
	var createdAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertReferral, auth.ID, req.Name, req.ContactNumber, req.CompanyName, req.Email)
	if err := row.Scan(&id, &status, &createdAt); err != nil {
		a.fail(w, err, "Failed to submit referral")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Referral submitted successfully",
		"referral": map[string]any{
			"id":            id,
			"userId":        auth.ID,
			"name":          req.Name,
			"contactNumber": req.ContactNumber,
			"companyName":   req.CompanyName,
			"email":         req.Email,
			"status":        status,
			"createdAt":     createdAt,
		},
	})
}

func (a *App) MyReferrals(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListReferralsByUser, auth.ID)
	if err != nil {
		a.fail(w, err, "Failed to load referrals")
		return
	}
	defer rows.Close()

	referrals := make([]map[string]any, 0)
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.UserID, &ref.Name, &ref.ContactNumber, &ref.CompanyName, &ref.Email, &ref.Status, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			a.fail(w, err, "Failed to load referrals")
			return
		}
		referrals = append(referrals, referralOut(ref))
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "referrals": referrals})
}

type contentRequestPayload struct {
	Requests []domain.ContentRequestItem `json:"requests"`
}

// CreateContentRequest stores a wish list of materials not yet in the
// catalog. Items with a blank service name are dropped before saving.
func (a *App) CreateContentRequest(w http.ResponseWriter, r *http.Request) {
	auth, _ := a.currentUser(r)

	var req contentRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Requests) == 0 {
		a.error(w, http.StatusBadRequest, "Please provide at least one service with content.")
		return
	}

	valid := make([]domain.ContentRequestItem, 0, len(req.Requests))
	for _, item := range req.Requests {
		if strings.TrimSpace(item.Service) == "" {
			continue
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		a.error(w, http.StatusBadRequest, "No valid service data provided.")
		return
	}

	encoded, err := json.Marshal(valid)
	if err != nil {
		a.fail(w, err, "Failed to submit requests")
		return
	}

	var id string
	var createdAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertContentRequest, auth.ID, encoded)
	if err := row.Scan(&id, &createdAt); err != nil {
		a.fail(w, err, "Failed to submit requests")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Requests submitted successfully!",
		"data": map[string]any{
			"id":        id,
			"userId":    auth.ID,
			"requests":  valid,
			"createdAt": createdAt,
		},
	})
}

func contentsOut(contents []domain.Content) []map[string]any {
	out := make([]map[string]any, 0, len(contents))
	for _, c := range contents {
		out = append(out, map[string]any{
			"id":    c.ID,
			"title": c.Title,
			"type":  c.Type,
			"url":   c.URL,
		})
	}
	return out
}

func referralOut(ref domain.Referral) map[string]any {
	return map[string]any{
		"id":            ref.ID,
		"userId":        ref.UserID,
		"name":          ref.Name,
		"contactNumber": ref.ContactNumber,
		"companyName":   ref.CompanyName,
		"email":         ref.Email,
		"status":        ref.Status,
		"createdAt":     ref.CreatedAt,
		"updatedAt":     ref.UpdatedAt,
	}
}
