package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bizportal/internal/domain"
	"bizportal/internal/sqlinline"
	"bizportal/internal/storage"
)

const maxUploadBytes = 100 << 20 // 100MB, matches the client-side limit

type serviceRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (a *App) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "name is required")
		return
	}

	empty, _ := json.Marshal(domain.PlanContents{})
	var id string
	var createdAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertService, req.Name, req.Description, empty)
	if err := row.Scan(&id, &createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			a.error(w, http.StatusConflict, "Service already exists")
			return
		}
		a.fail(w, err, "Failed to create service")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"service": map[string]any{
			"id":          id,
			"name":        req.Name,
			"description": req.Description,
			"createdAt":   createdAt,
		},
	})
}

func (a *App) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	svc, err := scanService(a.SQL.QueryRow(r.Context(), sqlinline.QUpdateService, id, req.Name, req.Description))
	if err != nil {
		a.fail(w, err, "Service not found")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "service": serviceOut(*svc, "")})
}

func (a *App) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := a.loadAllServices(r.Context())
	if err != nil {
		a.fail(w, err, "Failed to load services")
		return
	}
	out := make([]map[string]any, 0, len(services))
	for _, svc := range services {
		out = append(out, serviceOut(svc, ""))
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "services": out})
}

type membershipRequest struct {
	PlanName        domain.PlanTier `json:"planName" validate:"required"`
	Price           float64         `json:"price"`
	Description     string          `json:"description"`
	ValidityDays    int             `json:"validityDays" validate:"required,gt=0"`
	AllowedServices []string        `json:"allowedServices"`
}

func (a *App) CreateMembership(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil || !domain.ValidPlanTier(req.PlanName) {
		a.error(w, http.StatusBadRequest, "planName and validityDays are required")
		return
	}

	if req.AllowedServices == nil {
		req.AllowedServices = []string{}
	}
	allowed, _ := json.Marshal(req.AllowedServices)
	var id string
	var createdAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertMembership, req.PlanName, req.Price, req.Description, req.ValidityDays, allowed)
	if err := row.Scan(&id, &createdAt); err != nil {
		a.fail(w, err, "Failed to create membership")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"membership": map[string]any{
			"id":              id,
			"planName":        req.PlanName,
			"price":           req.Price,
			"description":     req.Description,
			"validityDays":    req.ValidityDays,
			"allowedServices": req.AllowedServices,
			"createdAt":       createdAt,
		},
	})
}

// ListMemberships returns every plan with its allowed services, each
// service's contents filtered down to that plan's own tier.
func (a *App) ListMemberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := a.listMemberships(r.Context())
	if err != nil {
		a.fail(w, err, "Failed to load memberships")
		return
	}

	services, err := a.loadAllServices(r.Context())
	if err != nil {
		a.fail(w, err, "Failed to load services")
		return
	}
	byID := make(map[string]domain.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	out := make([]map[string]any, 0, len(memberships))
	for _, m := range memberships {
		entry := membershipOut(m)
		allowed := make([]map[string]any, 0, len(m.AllowedServiceIDs))
		for _, sid := range m.AllowedServiceIDs {
			svc, ok := byID[sid]
			if !ok {
				continue
			}
			allowed = append(allowed, serviceOut(svc, m.PlanName))
		}
		entry["allowedServices"] = allowed
		out = append(out, entry)
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(out),
		"memberships": out,
	})
}

type assignMembershipRequest struct {
	MembershipID string `json:"membershipId"`
}

// AdminAssignMembership assigns a plan to any user. validTill is reset
// unconditionally from now + validityDays.
func (a *App) AdminAssignMembership(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req assignMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MembershipID == "" {
		a.error(w, http.StatusBadRequest, "membershipId is required")
		return
	}

	membership, err := a.loadMembership(r.Context(), req.MembershipID)
	if err != nil {
		a.fail(w, err, "User or Membership not found")
		return
	}

	validTill := membership.ValidUntil(time.Now())
	row := a.SQL.QueryRow(r.Context(), sqlinline.QAssignMembership, userID, membership.ID, validTill)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "User or Membership not found")
			return
		}
		a.fail(w, err, "Failed to assign membership")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Membership '" + string(membership.PlanName) + "' assigned successfully.",
		"user": map[string]any{
			"id":                   id,
			"plan":                 membership.PlanName,
			"validTill":            validTill,
			"allowedServicesCount": len(membership.AllowedServiceIDs),
		},
	})
}

// ListUsers returns every user with the membership joined; each allowed
// service's contents are filtered to the user's own tier.
func (a *App) ListUsers(w http.ResponseWriter, r *http.Request) {
	services, err := a.loadAllServices(r.Context())
	if err != nil {
		a.fail(w, err, "Failed to load services")
		return
	}
	byID := make(map[string]domain.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListUsers)
	if err != nil {
		a.fail(w, err, "Failed to load users")
		return
	}
	defer rows.Close()

	users := make([]map[string]any, 0)
	for rows.Next() {
		u, m, err := scanUserWithMembership(rows)
		if err != nil {
			a.fail(w, err, "Failed to load users")
			return
		}

		entry := map[string]any{
			"id":           u.ID,
			"businessName": u.BusinessName,
			"ownerName":    u.OwnerName,
			"industry":     u.Industry,
			"contactInfo":  u.ContactInfo,
			"email":        u.Email,
			"role":         u.Role,
			"validTill":    u.ValidTill,
			"progress":     u.Progress,
			"createdAt":    u.CreatedAt,
		}
		if m != nil {
			allowed := make([]map[string]any, 0, len(m.AllowedServiceIDs))
			for _, sid := range m.AllowedServiceIDs {
				if svc, ok := byID[sid]; ok {
					allowed = append(allowed, serviceOut(svc, m.PlanName))
				}
			}
			entry["membership"] = map[string]any{
				"planName":        m.PlanName,
				"price":           m.Price,
				"validityDays":    m.ValidityDays,
				"allowedServices": allowed,
			}
		}
		users = append(users, entry)
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// tierAccess selects which tier lists an upload lands in. Sent by the admin
// client as a JSON object with explicit boolean fields.
type tierAccess struct {
	Startup bool `json:"startup"`
	Growth  bool `json:"growth"`
	Matured bool `json:"matured"`
}

func (t tierAccess) tiers() []domain.PlanTier {
	var tiers []domain.PlanTier
	if t.Startup {
		tiers = append(tiers, domain.PlanStartup)
	}
	if t.Growth {
		tiers = append(tiers, domain.PlanGrowthStage)
	}
	if t.Matured {
		tiers = append(tiers, domain.PlanMatureStage)
	}
	return tiers
}

// UploadServiceContent ingests study files for a service. Multipart fields:
// serviceName, access (JSON booleans per tier), optional userId, files[].
// The service is resolved or created, each file is stored and appended to
// every selected tier list, then the whole contents document is saved (last
// write wins on concurrent uploads; there is no locking).
func (a *App) UploadServiceContent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	serviceName := r.FormValue("serviceName")
	files := r.MultipartForm.File["files"]
	if serviceName == "" || len(files) == 0 {
		a.error(w, http.StatusBadRequest, "Service name and files are required")
		return
	}

	var access tierAccess
	if raw := r.FormValue("access"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &access); err != nil {
			a.error(w, http.StatusBadRequest, "Invalid access control format")
			return
		}
	}
	tiers := access.tiers()
	if len(tiers) == 0 {
		a.error(w, http.StatusBadRequest, "At least one plan tier must be selected")
		return
	}

	svc, err := a.loadServiceByName(r.Context(), serviceName)
	if errors.Is(err, domain.ErrNotFound) {
		empty, _ := json.Marshal(domain.PlanContents{})
		var id string
		var createdAt time.Time
		row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertService, serviceName, "", empty)
		if scanErr := row.Scan(&id, &createdAt); scanErr != nil {
			a.fail(w, scanErr, "Failed to create service")
			return
		}
		svc = &domain.Service{ID: id, Name: serviceName, CreatedAt: createdAt}
	} else if err != nil {
		a.fail(w, err, "Failed to load service")
		return
	}

	for _, header := range files {
		content, err := a.storeUpload(r, header)
		if err != nil {
			a.fail(w, err, "Failed to upload content")
			return
		}
		for _, tier := range tiers {
			svc.PlanContents.Append(tier, content)
		}
	}

	encoded, err := json.Marshal(svc.PlanContents)
	if err != nil {
		a.fail(w, err, "Failed to save service")
		return
	}
	var id string
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateServiceContents, svc.ID, encoded).Scan(&id); err != nil {
		a.fail(w, err, "Failed to save service")
		return
	}

	// Optional ledger sync: refresh the target user's stored denominator
	// against the grown catalog. Completed sets are not reconciled, so the
	// percentage can drop after this.
	if userID := r.FormValue("userId"); userID != "" {
		if err := a.refreshUserTotals(r, userID, svc); err != nil {
			a.Logger.Warn().Err(err).Str("user_id", userID).Msg("progress total refresh failed")
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service content uploaded successfully",
		"service": serviceOut(*svc, ""),
	})
}

func (a *App) storeUpload(r *http.Request, header *multipart.FileHeader) (domain.Content, error) {
	file, err := header.Open()
	if err != nil {
		return domain.Content{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return domain.Content{}, err
	}
	if len(data) > maxUploadBytes {
		return domain.Content{}, domain.ErrValidation
	}

	kind, mime, err := storage.Classify(data)
	if err != nil {
		return domain.Content{}, err
	}

	key := "service_contents/" + uuid.NewString() + path.Ext(header.Filename)
	url, err := a.Store.Upload(r.Context(), key, data, mime)
	if err != nil {
		return domain.Content{}, err
	}

	return domain.Content{
		ID:         uuid.NewString(),
		Title:      header.Filename,
		Type:       kind,
		URL:        url,
		StorageKey: key,
		UploadedAt: time.Now(),
	}, nil
}

func (a *App) refreshUserTotals(r *http.Request, userID string, svc *domain.Service) error {
	usr, err := a.loadUser(r.Context(), userID)
	if err != nil {
		return err
	}
	if !usr.HasMembership() {
		return nil
	}
	membership, err := a.loadMembership(r.Context(), *usr.MembershipID)
	if err != nil {
		return err
	}
	total := len(svc.PlanContents.ForTier(membership.PlanName))
	ledger := usr.Progress.BumpTotal(svc.ID, total)
	return a.saveProgress(r.Context(), usr.ID, ledger)
}

type benefitMatrixRequest struct {
	Plans    []domain.BenefitPlan `json:"plans"`
	Benefits []domain.BenefitRow  `json:"benefits"`
}

// SaveBenefitMatrix upserts the single marketing benefit-matrix row.
func (a *App) SaveBenefitMatrix(w http.ResponseWriter, r *http.Request) {
	var req benefitMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "plans and benefits are required")
		return
	}
	for _, row := range req.Benefits {
		if len(row.Values) != 3 {
			a.error(w, http.StatusBadRequest, "each benefit requires exactly three values")
			return
		}
	}

	plans, _ := json.Marshal(req.Plans)
	benefits, _ := json.Marshal(req.Benefits)
	matrix, err := scanBenefitMatrix(a.SQL.QueryRow(r.Context(), sqlinline.QUpsertBenefitMatrix, plans, benefits))
	if err != nil {
		a.fail(w, err, "Failed to save membership data")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Membership data saved successfully",
		"data":    matrix,
	})
}

func (a *App) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListEnquiries)
	if err != nil {
		a.fail(w, err, "Failed to load enquiries")
		return
	}
	defer rows.Close()

	enquiries := make([]map[string]any, 0)
	for rows.Next() {
		var e domain.Enquiry
		var email string
		if err := rows.Scan(&e.ID, &e.UserID, &email, &e.Name, &e.Phone, &e.Description, &e.CreatedAt); err != nil {
			a.fail(w, err, "Failed to load enquiries")
			return
		}
		enquiries = append(enquiries, map[string]any{
			"id":          e.ID,
			"userId":      map[string]any{"id": e.UserID, "email": email},
			"name":        e.Name,
			"phone":       e.Phone,
			"description": e.Description,
			"createdAt":   e.CreatedAt,
		})
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "enquiries": enquiries})
}

func (a *App) DeleteEnquiry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tag, err := a.SQL.Exec(r.Context(), sqlinline.QDeleteEnquiry, id)
	if err != nil {
		a.fail(w, err, "Failed to delete enquiry")
		return
	}
	if tag.RowsAffected() == 0 {
		a.error(w, http.StatusNotFound, "Enquiry not found")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "message": "Enquiry deleted successfully"})
}

func (a *App) ListReferrals(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListReferrals)
	if err != nil {
		a.fail(w, err, "Failed to load referrals")
		return
	}
	defer rows.Close()

	referrals := make([]map[string]any, 0)
	for rows.Next() {
		var ref domain.Referral
		var ownerName, ownerEmail string
		if err := rows.Scan(&ref.ID, &ref.UserID, &ownerName, &ownerEmail, &ref.Name, &ref.ContactNumber, &ref.CompanyName, &ref.Email, &ref.Status, &ref.CreatedAt); err != nil {
			a.fail(w, err, "Failed to load referrals")
			return
		}
		entry := referralOut(ref)
		delete(entry, "updatedAt")
		entry["userId"] = map[string]any{"id": ref.UserID, "ownerName": ownerName, "email": ownerEmail}
		referrals = append(referrals, entry)
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "referrals": referrals})
}

type referralStatusRequest struct {
	Status domain.ReferralStatus `json:"status"`
}

func (a *App) UpdateReferralStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req referralStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !domain.ValidReferralStatus(req.Status) {
		a.error(w, http.StatusBadRequest, "Invalid status")
		return
	}

	var ref domain.Referral
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateReferralStatus, id, req.Status)
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.Name, &ref.ContactNumber, &ref.CompanyName, &ref.Email, &ref.Status, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "Referral not found")
			return
		}
		a.fail(w, err, "Failed to update status")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Status updated successfully",
		"referral": referralOut(ref),
	})
}

func (a *App) ListContentRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListContentRequests)
	if err != nil {
		a.fail(w, err, "Failed to load requests")
		return
	}
	defer rows.Close()

	requests := make([]map[string]any, 0)
	for rows.Next() {
		var id, userID, businessName string
		var items []byte
		var createdAt time.Time
		if err := rows.Scan(&id, &userID, &businessName, &items, &createdAt); err != nil {
			a.fail(w, err, "Failed to load requests")
			return
		}
		var decoded []domain.ContentRequestItem
		if len(items) > 0 {
			_ = json.Unmarshal(items, &decoded)
		}
		requests = append(requests, map[string]any{
			"id":        id,
			"user":      map[string]any{"id": userID, "businessName": businessName},
			"requests":  decoded,
			"createdAt": createdAt,
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(requests),
		"data":    requests,
	})
}

// serviceOut shapes a service for responses. When tier is set, contents are
// filtered down to that tier only.
func serviceOut(svc domain.Service, tier domain.PlanTier) map[string]any {
	out := map[string]any{
		"id":          svc.ID,
		"name":        svc.Name,
		"description": svc.Description,
		"createdAt":   svc.CreatedAt,
	}
	if tier != "" {
		out["planContents"] = map[string]any{string(tier): svc.PlanContents.ForTier(tier)}
	} else {
		out["planContents"] = svc.PlanContents
	}
	return out
}
