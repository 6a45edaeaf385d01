package infra

import (
	"strings"
	"testing"

	"bizportal/internal/sqlinline"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 102c144c-538a-4b26-a761-6389a51c1f86\nselect 1"
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extract marker: %v", err)
	}
	if marker != "102c144c-538a-4b26-a761-6389a51c1f86" {
		t.Fatalf("marker = %q", marker)
	}
	if trimmed != "select 1" {
		t.Fatalf("trimmed = %q", trimmed)
	}
}

func TestExtractMarkerRejectsUnmarkedQuery(t *testing.T) {
	if _, _, err := extractMarker("select 1"); err == nil {
		t.Fatal("expected unmarked query to be rejected")
	}
	if _, _, err := extractMarker("--sql not-a-uuid\nselect 1"); err == nil {
		t.Fatal("expected malformed marker to be rejected")
	}
}

func TestInlineQueriesCarryMarkers(t *testing.T) {
	queries := map[string]string{
		"insert_user":            sqlinline.QInsertUser,
		"select_user_by_email":   sqlinline.QSelectUserByEmail,
		"select_user_by_id":      sqlinline.QSelectUserByID,
		"select_auth_user":       sqlinline.QSelectAuthUser,
		"update_user_progress":   sqlinline.QUpdateUserProgress,
		"assign_membership":      sqlinline.QAssignMembership,
		"list_users":             sqlinline.QListUsers,
		"insert_service":         sqlinline.QInsertService,
		"select_service_by_id":   sqlinline.QSelectServiceByID,
		"select_service_by_name": sqlinline.QSelectServiceByName,
		"update_service":         sqlinline.QUpdateService,
		"update_contents":        sqlinline.QUpdateServiceContents,
		"list_services":          sqlinline.QListServices,
		"list_services_by_ids":   sqlinline.QListServicesByIDs,
		"insert_membership":      sqlinline.QInsertMembership,
		"select_membership":      sqlinline.QSelectMembershipByID,
		"list_memberships":       sqlinline.QListMemberships,
		"select_benefit_matrix":  sqlinline.QSelectBenefitMatrix,
		"upsert_benefit_matrix":  sqlinline.QUpsertBenefitMatrix,
		"insert_enquiry":         sqlinline.QInsertEnquiry,
		"list_enquiries":         sqlinline.QListEnquiries,
		"delete_enquiry":         sqlinline.QDeleteEnquiry,
		"insert_referral":        sqlinline.QInsertReferral,
		"list_referrals":         sqlinline.QListReferrals,
		"list_referrals_by_user": sqlinline.QListReferralsByUser,
		"update_referral_status": sqlinline.QUpdateReferralStatus,
		"insert_content_request": sqlinline.QInsertContentRequest,
		"list_content_requests":  sqlinline.QListContentRequests,
	}
	seen := make(map[string]string, len(queries))
	for name, query := range queries {
		marker, trimmed, err := extractMarker(query)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if strings.TrimSpace(trimmed) == "" {
			t.Fatalf("%s: empty statement body", name)
		}
		if prev, dup := seen[marker]; dup {
			t.Fatalf("marker %s reused by %s and %s", marker, prev, name)
		}
		seen[marker] = name
	}
}
