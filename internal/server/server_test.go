package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	billingservice "github.com/domulabs/domu/internal/billing/service"
	buildingdomain "github.com/domulabs/domu/internal/building/domain"
	buildingservice "github.com/domulabs/domu/internal/building/service"
	"github.com/domulabs/domu/internal/cache"
	"github.com/domulabs/domu/internal/clock"
	"github.com/domulabs/domu/internal/config"
	"github.com/domulabs/domu/internal/events"
	tenantservice "github.com/domulabs/domu/internal/tenant/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateBuildingEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t)

	body := []byte(`{"address":"10 Endpoint Road","apartments_capacity":2}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/buildings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data buildingdomain.Building `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ID == 0 || resp.Data.Address != "10 Endpoint Road" {
		t.Fatalf("unexpected building: %+v", resp.Data)
	}

	// provisioned inventory is visible immediately
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/buildings/%s/apartments", resp.Data.ID), nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing apartments, got %d", w.Code)
	}
	var apartments struct {
		Data []buildingdomain.Apartment `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &apartments); err != nil {
		t.Fatalf("decode apartments: %v", err)
	}
	if len(apartments.Data) != 2 {
		t.Fatalf("expected 2 apartments, got %d", len(apartments.Data))
	}
}

func TestCreateBuildingBadPayload(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/buildings", bytes.NewReader([]byte(`{"address":`)))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateBuildingBlankAddress(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/buildings", bytes.NewReader([]byte(`{"address":"  "}`)))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetBuildingNotFound(t *testing.T) {
	engine, node := newTestEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/buildings/%s", node.Generate()), nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetBuildingRejectsMalformedID(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/buildings/not-a-number", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func newTestEngine(t *testing.T) (*gin.Engine, *snowflake.Node) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupServerTestDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	log := zap.NewNop()
	ticker := clock.SystemClock{}
	outbox := events.NewOutbox(db, node)
	buildings := cache.NewTTLCache[snowflake.ID, buildingdomain.Building]()

	buildingSvc := buildingservice.NewService(buildingservice.ServiceParam{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     ticker,
		Outbox:    outbox,
		Buildings: buildings,
	})
	tenantSvc := tenantservice.NewService(tenantservice.ServiceParam{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  ticker,
		Outbox: outbox,
	})
	billingSvc := billingservice.NewService(billingservice.ServiceParam{
		DB:        db,
		Log:       log,
		Clock:     ticker,
		Buildings: buildings,
	})

	srv := NewServer(ServerParam{
		Config:      config.Config{},
		DB:          db,
		Log:         log,
		BuildingSvc: buildingSvc,
		TenantSvc:   tenantSvc,
		BillingSvc:  billingSvc,
	})
	return srv.NewEngine(), node
}

func setupServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&buildingdomain.Building{},
		&buildingdomain.Utility{},
		&buildingdomain.Apartment{},
		&buildingdomain.UtilitySubscription{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS domain_events (
			id INTEGER PRIMARY KEY,
			building_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create domain_events: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_domain_events_dedupe ON domain_events (building_id, dedupe_key) WHERE dedupe_key IS NOT NULL`,
	).Error; err != nil {
		t.Fatalf("create dedupe index: %v", err)
	}
	return db
}
