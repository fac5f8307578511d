//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/config"
	"github.com/NilsonPMMC/sgfs/internal/infra"
	"github.com/NilsonPMMC/sgfs/internal/middleware"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const secretoPrueba = "test-secret-key"

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
	token  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("sgfs_test"),
		tcPostgres.WithUsername("sgfs"),
		tcPostgres.WithPassword("sgfs"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		CORSAllowedOrigins: "*",
		DatabaseURL:        pgURL,
		DBMaxOpenConns:     20,
		DBMaxIdleConns:     5,
		RedisURL:           rdURL,
		JWTSecret:          secretoPrueba,
		OrganizacionNombre: "Fundo Social de Teste",
		RateLimitPerMinute: 10000,
	}

	db, err := infra.NewDatabase(infra.DBConfig{DSN: cfg.DatabaseURL, MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns})
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	srv := httptest.NewServer(New(cfg, db, rdb))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb, token: firmar(t, middleware.RolAdministrador)}
}

func firmar(t *testing.T, rol string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "e2e",
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretoPrueba))
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path string, body any, dest any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

type conID struct {
	ID string `json:"id"`
}

func (e *testEnv) crearItem(t *testing.T, nombre string) string {
	t.Helper()
	var it conID
	status := e.do(t, http.MethodPost, "/v1/items", map[string]any{"nombre": nombre, "unidad_medida": "unidade"}, &it)
	require.Equal(t, http.StatusCreated, status)
	return it.ID
}

func (e *testEnv) entidades(t *testing.T) (donante, gestora model.Entidad) {
	t.Helper()
	donante = model.Entidad{RazonSocial: "Supermercado Bom Preço", EsDonante: true}
	gestora = model.Entidad{RazonSocial: "Associação Casa Esperança", EsGestor: true}
	require.NoError(t, e.db.Create(&donante).Error)
	require.NoError(t, e.db.Create(&gestora).Error)
	return donante, gestora
}

func (e *testEnv) assertStock(t *testing.T, itemID string, esperado int64) {
	t.Helper()
	var s struct {
		EstoqueActual decimal.Decimal `json:"estoque_atual"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/items/"+itemID+"/stock", nil, &s))
	assert.True(t, s.EstoqueActual.Equal(decimal.NewFromInt(esperado)), "estoque de %s: %s", itemID, s.EstoqueActual)
}

func TestE2E_CicloDonaciones(t *testing.T) {
	env := setupTestEnv(t)
	donante, gestora := env.entidades(t)
	arroz := env.crearItem(t, "Arroz 5kg")
	feijao := env.crearItem(t, "Feijão 1kg")

	// 1. Donation-in
	var rec conID
	status := env.do(t, http.MethodPost, "/v1/donaciones-recibidas", map[string]any{
		"fecha":   "2024-04-02",
		"donante": map[string]string{"tipo": "entidad", "id": donante.ID.String()},
		"lineas": []map[string]any{
			{"item_id": arroz, "cantidad": "10"},
			{"item_id": feijao, "cantidad": "10"},
		},
	}, &rec)
	require.Equal(t, http.StatusCreated, status)
	env.assertStock(t, arroz, 10)

	// 2. Kit and feasibility
	var kit conID
	status = env.do(t, http.MethodPost, "/v1/kits", map[string]any{
		"nombre": "Cesta básica",
		"componentes": []map[string]any{
			{"item_id": arroz, "cantidad": "2"},
			{"item_id": feijao, "cantidad": "3"},
		},
	}, &kit)
	require.Equal(t, http.StatusCreated, status)

	var fact struct {
		Montables map[string]*int `json:"montables"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/kits/factibilidad", map[string]any{"kit_ids": []string{kit.ID}}, &fact))
	require.NotNil(t, fact.Montables[kit.ID])
	assert.Equal(t, 3, *fact.Montables[kit.ID])

	// 3. Donation-out exceeding stock is rejected wholesale
	salida := map[string]any{
		"fecha":              "2024-04-03",
		"entidad_gestora_id": gestora.ID.String(),
		"items":              []map[string]any{{"item_id": arroz, "cantidad": "1"}},
		"kits":               []map[string]any{{"kit_id": kit.ID, "cantidad": 4}},
	}
	require.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/v1/donaciones-realizadas", salida, nil))
	env.assertStock(t, arroz, 10)

	// 4. Within stock it posts one aggregated salida per item
	salida["kits"] = []map[string]any{{"kit_id": kit.ID, "cantidad": 2}}
	var rea struct {
		ID      string            `json:"id"`
		Salidas []json.RawMessage `json:"salidas"`
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/donaciones-realizadas", salida, &rea))
	assert.Len(t, rea.Salidas, 2)
	env.assertStock(t, arroz, 5)
	env.assertStock(t, feijao, 4)

	// 5. Shrinking the donation-in below what already left is rejected
	status = env.do(t, http.MethodPut, "/v1/donaciones-recibidas/"+rec.ID, map[string]any{
		"lineas": []map[string]any{{"item_id": arroz, "cantidad": "4"}},
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// 6. Receipt
	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/v1/donaciones-realizadas/"+rea.ID+"/comprobante", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	// 7. Deleting the donation-out restores stock
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/v1/donaciones-realizadas/"+rea.ID, nil, nil))
	env.assertStock(t, arroz, 10)

	var inconsistencias []json.RawMessage
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/estoque/consistencia", nil, &inconsistencias))
	assert.Empty(t, inconsistencias)

	n, err := env.rdb.LLen(context.Background(), worker.ColaEventosEstoque).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n, "registro entrada, registro salida, eliminación salida")
}

func TestE2E_SalidasConcurrentesNoDejanStockNegativo(t *testing.T) {
	env := setupTestEnv(t)
	donante, gestora := env.entidades(t)
	arroz := env.crearItem(t, "Arroz 5kg")

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/donaciones-recibidas", map[string]any{
		"fecha":   "2024-04-02",
		"donante": map[string]string{"tipo": "entidad", "id": donante.ID.String()},
		"lineas":  []map[string]any{{"item_id": arroz, "cantidad": "10"}},
	}, nil))

	const intentos = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		creadas  int
		rechazos int
	)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := env.do(t, http.MethodPost, "/v1/donaciones-realizadas", map[string]any{
				"fecha":              "2024-04-03",
				"entidad_gestora_id": gestora.ID.String(),
				"observaciones":      fmt.Sprintf("intento %d", i),
				"items":              []map[string]any{{"item_id": arroz, "cantidad": "3"}},
			}, nil)
			mu.Lock()
			defer mu.Unlock()
			switch status {
			case http.StatusCreated:
				creadas++
			case http.StatusConflict:
				rechazos++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, creadas)
	assert.Equal(t, intentos-3, rechazos)
	env.assertStock(t, arroz, 1)

	var inconsistencias []json.RawMessage
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/estoque/consistencia", nil, &inconsistencias))
	assert.Empty(t, inconsistencias)
}
