package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
	"github.com/undarez/camper-splatchs-sub001/pkg/geocode"
)

func washRequest() *dto.CreateStationRequest {
	return &dto.CreateStationRequest{
		Name:       "Test Wash",
		Address:    "12 avenue de la Mer",
		City:       "Biarritz",
		PostalCode: "64200",
		Latitude:   43.48,
		Longitude:  -1.55,
		Type:       "WASH_STATION",
		Services:   &dto.ServicesPayload{HighPressure: "NONE", Electricity: "NONE", TirePressure: true},
	}
}

// ── Create ──

func TestStationService_Create_WashStationIsPending(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)
	svc := env.stationService()

	req := washRequest()
	req.Status = "ACTIVE" // must be ignored

	resp, err := svc.Create(context.Background(), req, actor)
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if resp.Status != string(model.StatusPending) {
		t.Errorf("expected PENDING, got %s", resp.Status)
	}
	if resp.ValidatedAt != "" {
		t.Errorf("expected no validated_at, got %s", resp.ValidatedAt)
	}

	stored := env.store.stations[resp.ID]
	if stored == nil || stored.Status != model.StatusPending {
		t.Fatalf("expected persisted PENDING station, got %+v", stored)
	}
	row := env.store.services[resp.ID]
	if row == nil {
		t.Fatal("expected a service row for the wash station")
	}
	if !row.TirePressure || row.Vacuum || row.HighPressure != model.HighPressureNone || row.Electricity != model.ElectricityNone {
		t.Errorf("unexpected service row %+v", row)
	}
	if _, ok := env.store.parkings[resp.ID]; ok {
		t.Error("wash station must not get parking details")
	}
}

func TestStationService_Create_AnyCallerStatusYieldsPending(t *testing.T) {
	for _, status := range []string{"", "PENDING", "ACTIVE", "INACTIVE", "garbage"} {
		t.Run(status, func(t *testing.T) {
			env := newTestEnv()
			actor := env.addUser("u1", "user@example.fr", model.RoleUser)
			req := washRequest()
			req.Status = status

			resp, err := env.stationService().Create(context.Background(), req, actor)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if env.store.stations[resp.ID].Status != model.StatusPending {
				t.Errorf("expected PENDING for caller status %q", status)
			}
		})
	}
}

func TestStationService_Create_WashWithoutPayloadGetsDefaults(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)
	req := washRequest()
	req.Services = nil

	resp, err := env.stationService().Create(context.Background(), req, actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	row := env.store.services[resp.ID]
	if row == nil || row.HighPressure != model.HighPressureNone || row.TirePressure {
		t.Errorf("expected default service row, got %+v", row)
	}
}

func TestStationService_Create_ParkingFiltersAmenities(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	req := &dto.CreateStationRequest{
		Name:       "Aire du Lac",
		Address:    "Route du Lac",
		City:       "Annecy",
		PostalCode: "74000",
		Latitude:   45.9,
		Longitude:  6.12,
		Type:       "PARKING",
		Parking: &dto.ParkingPayload{
			IsPaid:          true,
			Electricity:     "amp_15",
			NearbyAmenities: []string{"boulangerie", "CASINO_EN_LIGNE"},
			TotalPlaces:     12,
		},
	}

	resp, err := env.stationService().Create(context.Background(), req, actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	details := env.store.parkings[resp.ID]
	if details == nil {
		t.Fatal("expected parking details")
	}
	if len(details.NearbyAmenities) != 1 || details.NearbyAmenities[0] != string(model.AmenityBoulangerie) {
		t.Errorf("expected only BOULANGERIE, got %v", details.NearbyAmenities)
	}
	if details.Electricity != model.ElectricityAmp15 || !details.IsPaid || details.TotalPlaces != 12 {
		t.Errorf("unexpected parking details %+v", details)
	}
	if _, ok := env.store.services[resp.ID]; ok {
		t.Error("parking must not get a wash service row")
	}
}

func TestStationService_Create_ParkingLegacyAmenities(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	body := `{"name":"Aire des Dunes","address":"Plage Nord","city":"Lacanau","postal_code":"33680",
		"latitude":45.0,"longitude":-1.2,"type":"PARKING",
		"parking":{"commercesProches":["BOULANGERIE","FOO"],"payant":true,"nombrePlaces":8}}`
	var req dto.CreateStationRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	resp, err := env.stationService().Create(context.Background(), &req, actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	details := env.store.parkings[resp.ID]
	if details == nil {
		t.Fatal("expected parking details")
	}
	if len(details.NearbyAmenities) != 1 || details.NearbyAmenities[0] != string(model.AmenityBoulangerie) {
		t.Errorf("expected [BOULANGERIE], got %v", details.NearbyAmenities)
	}
	if !details.IsPaid || details.TotalPlaces != 8 {
		t.Errorf("unexpected parking details %+v", details)
	}
}

func TestStationService_Create_Rejections(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)
	ghost := env.addUser("ghost", "ghost@example.fr", model.RoleUser)
	delete(env.store.users, "ghost")
	svc := env.stationService()

	bad := washRequest()
	bad.Type = "CAMPING"

	tests := []struct {
		name    string
		req     *dto.CreateStationRequest
		actor   *policy.Actor
		wantErr error
	}{
		{"anonymous", washRequest(), nil, ErrAuthRequired},
		{"unknown type", bad, actor, ErrInvalidStationType},
		{"author missing", washRequest(), ghost, ErrAuthorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req, tt.actor)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if len(env.store.stations) != 0 {
		t.Errorf("rejected creations must not persist, got %d stations", len(env.store.stations))
	}
}

func TestStationService_Create_EncryptionFailsOpen(t *testing.T) {
	env := newTestEnv()
	env.enc.err = errors.New("kms down")
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	resp, err := env.stationService().Create(context.Background(), washRequest(), actor)
	if err != nil {
		t.Fatalf("Create should not fail on encryption errors: %v", err)
	}
	if env.store.stations[resp.ID].EncryptedName != "" {
		t.Error("expected empty encrypted mirror")
	}
}

func TestStationService_Create_EncryptsMirrors(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	resp, err := env.stationService().Create(context.Background(), washRequest(), actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	st := env.store.stations[resp.ID]
	if st.EncryptedName != "cipher:Test Wash" || st.EncryptedAddress != "cipher:12 avenue de la Mer" {
		t.Errorf("unexpected mirrors %q / %q", st.EncryptedName, st.EncryptedAddress)
	}
}

func TestStationService_Create_GeocodesMissingCoordinates(t *testing.T) {
	env := newTestEnv()
	env.geocoder.result = &geocode.Result{Lat: 43.4832, Lng: -1.5586}
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	req := washRequest()
	req.Latitude, req.Longitude = 0, 0

	resp, err := env.stationService().Create(context.Background(), req, actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if env.geocoder.calls != 1 {
		t.Errorf("expected one geocoding call, got %d", env.geocoder.calls)
	}
	if resp.Latitude != 43.4832 || resp.Longitude != -1.5586 {
		t.Errorf("expected geocoded coordinates, got %f,%f", resp.Latitude, resp.Longitude)
	}
}

func TestStationService_Create_GeocodingFailureIsIgnored(t *testing.T) {
	env := newTestEnv()
	env.geocoder.err = geocode.ErrNoResult
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	req := washRequest()
	req.Latitude, req.Longitude = 0, 0
	if _, err := env.stationService().Create(context.Background(), req, actor); err != nil {
		t.Fatalf("geocoding failure must not fail creation: %v", err)
	}
}

func TestStationService_Create_NotifiesContact(t *testing.T) {
	env := newTestEnv()
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	if _, err := env.stationService().Create(context.Background(), washRequest(), actor); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(env.mailer.sent) != 1 || env.mailer.sent[0].To != testContactEmail {
		t.Fatalf("expected one notice to %s, got %+v", testContactEmail, env.mailer.sent)
	}
}

func TestStationService_Create_NotificationFailureIsIgnored(t *testing.T) {
	env := newTestEnv()
	env.mailer.err = errors.New("smtp unavailable")
	actor := env.addUser("u1", "user@example.fr", model.RoleUser)

	resp, err := env.stationService().Create(context.Background(), washRequest(), actor)
	if err != nil {
		t.Fatalf("mail failure must not fail creation: %v", err)
	}
	if _, ok := env.store.stations[resp.ID]; !ok {
		t.Error("station should be persisted")
	}
}

// ── GetByID / List ──

func TestStationService_GetByID_Visibility(t *testing.T) {
	env := newTestEnv()
	author := env.addUser("author", "author@example.fr", model.RoleUser)
	other := env.addUser("other", "other@example.fr", model.RoleUser)
	admin := env.addUser("admin", testAdminEmail, model.RoleUser)
	env.addStation("s1", model.StationTypeWash, model.StatusPending, "author")
	svc := env.stationService()
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, "s1", other); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("pending station should be hidden from other users, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "s1", nil); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("pending station should be hidden from anonymous callers, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "s1", author); err != nil {
		t.Errorf("author should see the station: %v", err)
	}
	if _, err := svc.GetByID(ctx, "s1", admin); err != nil {
		t.Errorf("admin should see the station: %v", err)
	}
	if _, err := svc.GetByID(ctx, "missing", admin); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestStationService_List_PublicSeesActiveOnlyAndIsCached(t *testing.T) {
	env := newTestEnv()
	env.addUser("author", "author@example.fr", model.RoleUser)
	env.addStation("s1", model.StationTypeWash, model.StatusActive, "author")
	env.addStation("s2", model.StationTypeWash, model.StatusPending, "author")
	env.addStation("s3", model.StationTypeParking, model.StatusActive, "author")
	svc := env.stationService()
	ctx := context.Background()

	req := &dto.StationListRequest{Status: "PENDING"} // ignored for non-admins
	items, total, err := svc.List(ctx, req, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 active stations, got %d (%d)", len(items), total)
	}
	for _, it := range items {
		if it.Status != string(model.StatusActive) {
			t.Errorf("non-admin listing returned %s station", it.Status)
		}
	}
	if len(env.cache.data) != 1 {
		t.Fatalf("expected the public page to be cached, got %d keys", len(env.cache.data))
	}

	// cached page served even after the store changes
	delete(env.store.stations, "s1")
	items, _, _ = svc.List(ctx, req, nil)
	if len(items) != 2 {
		t.Errorf("expected cached page with 2 items, got %d", len(items))
	}
}

func TestStationService_List_AdminFiltersByStatus(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin", "boss@example.fr", model.RoleAdmin)
	env.addStation("s1", model.StationTypeWash, model.StatusActive, "admin")
	env.addStation("s2", model.StationTypeWash, model.StatusPending, "admin")

	items, total, err := env.stationService().List(context.Background(), &dto.StationListRequest{Status: "PENDING"}, admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || items[0].ID != "s2" {
		t.Errorf("expected only s2, got %+v", items)
	}
	if len(env.cache.data) != 0 {
		t.Error("admin listings of non-active stations must not be cached")
	}
}

// ── Delete ──

func seedStationWithChildren(env *testEnv, id, authorID string) {
	env.addStation(id, model.StationTypeWash, model.StatusActive, authorID)
	env.store.services[id] = model.DefaultService(id)
	env.store.reviews["r-"+id] = &model.Review{ReviewID: "r-" + id, StationID: id, AuthorID: authorID, Content: "Super", Rating: 5}
}

func TestStationService_Delete_ForbiddenKeepsEverything(t *testing.T) {
	env := newTestEnv()
	env.addUser("author", "author@example.fr", model.RoleUser)
	stranger := env.addUser("stranger", "stranger@example.fr", model.RoleUser)
	seedStationWithChildren(env, "s1", "author")

	err := env.stationService().Delete(context.Background(), "s1", stranger)
	if !errors.Is(err, ErrStationForbidden) || !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, ok := env.store.stations["s1"]; !ok {
		t.Error("station should still exist")
	}
	if _, ok := env.store.services["s1"]; !ok {
		t.Error("service should still exist")
	}
	if _, ok := env.store.reviews["r-s1"]; !ok {
		t.Error("review should still exist")
	}
}

func TestStationService_Delete_CascadeForAuthorAndAdmin(t *testing.T) {
	for _, who := range []string{"author", "admin"} {
		t.Run(who, func(t *testing.T) {
			env := newTestEnv()
			author := env.addUser("author", "author@example.fr", model.RoleUser)
			admin := env.addUser("admin", testAdminEmail, model.RoleUser)
			seedStationWithChildren(env, "s1", "author")
			env.store.parkings["s1"] = model.DefaultParkingDetails("s1")

			actor := author
			if who == "admin" {
				actor = admin
			}
			if err := env.stationService().Delete(context.Background(), "s1", actor); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if len(env.store.stations)+len(env.store.services)+len(env.store.parkings)+len(env.store.reviews) != 0 {
				t.Errorf("expected every row gone, got %d stations %d services %d parkings %d reviews",
					len(env.store.stations), len(env.store.services), len(env.store.parkings), len(env.store.reviews))
			}
			if env.cache.deletes != 1 {
				t.Errorf("expected listing cache invalidation, got %d", env.cache.deletes)
			}
		})
	}
}

func TestStationService_Delete_Errors(t *testing.T) {
	env := newTestEnv()
	author := env.addUser("author", "author@example.fr", model.RoleUser)
	seedStationWithChildren(env, "s1", "author")
	svc := env.stationService()
	ctx := context.Background()

	if err := svc.Delete(ctx, "s1", nil); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("expected auth required, got %v", err)
	}
	if err := svc.Delete(ctx, "missing", author); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	boom := errors.New("connection reset")
	env.stations.errDelete = boom
	if err := svc.Delete(ctx, "s1", author); !errors.Is(err, boom) {
		t.Errorf("expected persistence error to surface, got %v", err)
	}
}
