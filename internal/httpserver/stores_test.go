package httpserver

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"ralli/internal/domain"
	ordersvc "ralli/internal/service/order"
	storesvc "ralli/internal/service/store"
)

// slugRepo backs a real store service for slug checks; other methods are
// never reached.
type slugRepo struct {
	storesvc.Repository
	used map[string]bool
}

func (r slugRepo) SlugInUse(_ context.Context, slug string) (bool, error) {
	return r.used[slug], nil
}

func TestCheckSlug_FormatIsCaseSensitive(t *testing.T) {
	router, err := buildRouter(logDiscard(), nil, Deps{
		Identity:     stubIdentity{},
		Stores:       storesvc.New(slugRepo{used: map[string]bool{"ace-strings": true}}, logDiscard()),
		Applications: &stubApplicationService{},
		Customers:    &stubCustomerService{},
		Orders:       &stubOrderService{},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	rec := do(router, http.MethodGet, "/stores/check-slug?slug=Ace-Strings", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"available":false`) || !strings.Contains(body, `"reason":"invalid_format"`) {
		t.Fatalf("uppercase slug must be invalid: %s", body)
	}

	rec = do(router, http.MethodGet, "/stores/check-slug?slug=ace-strings", "", "")
	if !strings.Contains(rec.Body.String(), `"reason":"taken"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCheckSlug(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/stores/check-slug?slug=taken", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"available":false`) || !strings.Contains(body, `"reason":"taken"`) {
		t.Fatalf("unexpected body: %s", body)
	}

	rec = do(router, http.MethodGet, "/stores/check-slug?slug=fresh-strings", "", "")
	if !strings.Contains(rec.Body.String(), `"available":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestKioskStore(t *testing.T) {
	router, td := newTestRouter(t)
	td.stores.kiosk = &domain.Store{ID: storeA, Name: "Net Gains", Slug: "net-gains", OwnerEmail: "owner@shop.test"}

	rec := do(router, http.MethodGet, "/kiosk/net-gains", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"name":"Net Gains"`) || strings.Contains(body, "owner@shop.test") {
		t.Fatalf("kiosk must expose only name and slug: %s", body)
	}

	if rec := do(router, http.MethodGet, "/kiosk/unknown", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestKioskCreateOrder(t *testing.T) {
	router, td := newTestRouter(t)
	td.stores.kiosk = &domain.Store{ID: storeA, Name: "Net Gains", Slug: "net-gains"}
	td.orders.created = &domain.Order{ID: orderX, StoreID: storeA}

	body := `{"customerName":"Ana","customerPhone":"6045550101","racketBrand":"Babolat","stringFocus":"control"}`
	rec := do(router, http.MethodPost, "/kiosk/net-gains/orders", "", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"orderId":"`+orderX+`"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if td.orders.gotStore != storeA || td.orders.gotSource != ordersvc.SourceKiosk {
		t.Fatalf("unexpected service call: store=%s source=%s", td.orders.gotStore, td.orders.gotSource)
	}
}

func TestKioskCreateOrder_UnknownStore(t *testing.T) {
	router, td := newTestRouter(t)

	rec := do(router, http.MethodPost, "/kiosk/closed-shop/orders", "", `{"customerName":"Ana"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if td.orders.gotSource != "" {
		t.Fatalf("order service must not be called")
	}
}

func TestRegisterMerchant_FillsOwnerFromIdentity(t *testing.T) {
	router, td := newTestRouter(t)
	td.stores.store = &domain.Store{ID: storeB, Name: "New Shop", Slug: "new-shop", Status: domain.StatusPending}

	rec := do(router, http.MethodPost, "/merchants", "member", `{"businessName":"New Shop"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if td.stores.register.OwnerID != member.UserID || td.stores.register.OwnerEmail != member.Email {
		t.Fatalf("owner not taken from identity: %+v", td.stores.register)
	}
	if !strings.Contains(rec.Body.String(), `"data":{"id":"`+storeB) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRegisterMerchant_Conflict(t *testing.T) {
	router, td := newTestRouter(t)
	td.stores.err = domain.Conflict("slug is already taken")

	rec := do(router, http.MethodPost, "/merchants", "member", `{"businessName":"Taken"}`)

	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "slug is already taken") {
		t.Fatalf("expected 409 with message, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListMerchants(t *testing.T) {
	router, _ := newTestRouter(t)

	if rec := do(router, http.MethodGet, "/merchants", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/merchants", "staff-a", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec := do(router, http.MethodGet, "/merchants", "admin", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"merchants":[]`) {
		t.Fatalf("expected empty list, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestReviewMerchant(t *testing.T) {
	router, td := newTestRouter(t)
	td.stores.store = &domain.Store{ID: storeB, Status: domain.StatusApproved, IsActive: true}

	if rec := do(router, http.MethodPatch, "/merchants", "member", `{"merchantId":"`+storeB+`","status":"approved"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec := do(router, http.MethodPatch, "/merchants", "admin", `{"merchantId":"`+storeB+`","status":"approved","isActive":true}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"isActive":true`) {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}
